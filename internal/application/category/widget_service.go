package category

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gtfsreview/backend/internal/application/media"
	"github.com/gtfsreview/backend/internal/domain/category"
	"github.com/gtfsreview/backend/internal/domain/shared"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// widgetResponse renders the configuration page of one widget of c
func (s *Service) widgetResponse(ctx context.Context, c *category.ReviewCategory, t category.WidgetType) (*WidgetResponse, error) {
	w, err := category.NewWidget(c, t)
	if err != nil {
		return nil, err
	}
	resp := &WidgetResponse{
		Type:              string(w.Type()),
		ID:                w.ID(),
		CategoryID:        c.ID,
		CategoryName:      c.Name(),
		Template:          w.Template(),
		ConfigureTemplate: w.ConfigureTemplate(),
		Flags:             widgetFlags(c, t),
		Configuration:     []ConfigSectionResponse{},
		Next:              toWidgetRef(w.Next()),
		Previous:          toWidgetRef(w.Previous()),
	}
	for _, section := range w.Configuration() {
		out := ConfigSectionResponse{
			Name:                   section.Name,
			Table:                  section.Table,
			RelatedFieldOtherTable: section.RelatedFieldOtherTable,
			OtherText:              section.OtherText,
			Links:                  ToLinkResponses(section.Links),
			Scores:                 ToScoreResponses(section.Scores),
			VisualExamples:         ToVisualExampleResponses(ctx, s.images, section.VisualExamples),
		}
		for _, f := range section.RelatedFields {
			out.RelatedFields = append(out.RelatedFields, ToFieldResponse(f))
		}
		if section.Name == category.SectionRelatedFieldSameTable {
			out.FieldChoices = s.relatedFieldChoices(c)
		}
		resp.Configuration = append(resp.Configuration, out)
	}
	return resp, nil
}

// relatedFieldChoices lists the fields of the reviewed table that can still
// be attached
func (s *Service) relatedFieldChoices(c *category.ReviewCategory) []string {
	fields, err := s.schema.Fields(c.GtfsField.Table)
	if err != nil {
		return nil
	}
	taken := map[string]bool{c.GtfsField.Name: true}
	for _, f := range c.ReviewWidget.RelatedFields {
		taken[f.Name] = true
	}
	var choices []string
	for _, f := range fields {
		if !taken[f] {
			choices = append(choices, f)
		}
	}
	return choices
}

func (s *Service) loadByWidget(ctx context.Context, t category.WidgetType, widgetID uuid.UUID) (*category.ReviewCategory, error) {
	c, err := s.categories.FindByWidgetID(ctx, t, widgetID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Widget not found")
		}
		return nil, err
	}
	return c, nil
}

// saveWidget persists a widget change and returns the refreshed page
func (s *Service) saveWidget(ctx context.Context, c *category.ReviewCategory, t category.WidgetType) (*WidgetResponse, error) {
	c.Touch()
	if err := s.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return s.widgetResponse(ctx, c, t)
}

// GetWidget returns the configuration page of a widget
func (s *Service) GetWidget(ctx context.Context, widgetType string, widgetID uuid.UUID) (*WidgetResponse, error) {
	t, err := category.ParseWidgetType(widgetType)
	if err != nil {
		return nil, err
	}
	c, err := s.loadByWidget(ctx, t, widgetID)
	if err != nil {
		return nil, err
	}
	return s.widgetResponse(ctx, c, t)
}

// ConfigureWidget updates the flags of a widget
func (s *Service) ConfigureWidget(ctx context.Context, widgetType string, widgetID uuid.UUID, req ConfigureWidgetRequest) (*WidgetResponse, error) {
	t, err := category.ParseWidgetType(widgetType)
	if err != nil {
		return nil, err
	}
	c, err := s.loadByWidget(ctx, t, widgetID)
	if err != nil {
		return nil, err
	}
	switch t {
	case category.WidgetTypeReview:
		c.ReviewWidget.Configure(req.HasRelatedFieldSameTable, req.HasRelatedFieldOtherTable)
	case category.WidgetTypeConsistency:
		c.ConsistencyWidget.Configure(req.HasVisualExample, req.HasLink, req.HasOtherText)
	case category.WidgetTypeResultsCapture:
		c.ResultsCaptureWidget.Configure(category.CaptureFlags{
			HasScore:         req.HasScore,
			HasScoreImage:    req.HasScoreImage,
			HasScoreReason:   req.HasScoreReason,
			HasReferenceLink: req.HasReferenceLink,
			HasReferenceDate: req.HasReferenceDate,
		})
	}
	resp, err := s.saveWidget(ctx, c, t)
	if err != nil {
		return nil, err
	}
	logger.WithTraceContext(ctx, s.logger).Info("Widget configured",
		zap.String("widget_type", string(t)), zap.String("widget_id", widgetID.String()))
	return resp, nil
}

// ViewReviewWidget shows the review widget the way reviewers see it
func (s *Service) ViewReviewWidget(ctx context.Context, widgetID uuid.UUID) (*ReviewWidgetView, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeReview, widgetID)
	if err != nil {
		return nil, err
	}
	w, err := category.NewWidget(c, category.WidgetTypeReview)
	if err != nil {
		return nil, err
	}
	view := &ReviewWidgetView{
		WidgetID:               widgetID,
		CategoryID:             c.ID,
		CategoryName:           c.Name(),
		Template:               w.Template(),
		FieldKind:              category.NewReviewField(c.GtfsField).Kind(),
		Field:                  ToFieldResponse(c.GtfsField),
		RelatedFields:          make([]FieldResponse, 0, len(c.ReviewWidget.RelatedFields)),
		RelatedFieldOtherTable: c.ReviewWidget.RelatedFieldOtherTable,
	}
	for _, f := range c.ReviewWidget.RelatedFields {
		view.RelatedFields = append(view.RelatedFields, ToFieldResponse(f))
	}
	return view, nil
}

// AddRelatedField attaches another field of the reviewed table
func (s *Service) AddRelatedField(ctx context.Context, widgetID uuid.UUID, req AddRelatedFieldRequest) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeReview, widgetID)
	if err != nil {
		return nil, err
	}
	if req.Table != c.GtfsField.Table {
		return nil, shared.NewDomainError("INVALID_INPUT", "Related field must be in the same table.")
	}
	field, err := s.getOrCreateField(ctx, req.Table, req.Field)
	if err != nil {
		return nil, err
	}
	if err := c.AddRelatedField(*field); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeReview)
}

// DeleteRelatedField detaches a related field
func (s *Service) DeleteRelatedField(ctx context.Context, widgetID, fieldID uuid.UUID) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeReview, widgetID)
	if err != nil {
		return nil, err
	}
	if err := c.ReviewWidget.RemoveRelatedField(fieldID); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeReview)
}

// SetRelatedFieldOtherTable records the reference to a field of another
// table
func (s *Service) SetRelatedFieldOtherTable(ctx context.Context, widgetID uuid.UUID, req SetOtherTableRequest) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeReview, widgetID)
	if err != nil {
		return nil, err
	}
	if err := c.ReviewWidget.SetRelatedFieldOtherTable(req.RelatedFieldOtherTable); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeReview)
}

// AddVisualExample uploads an image and attaches it as a visual example
func (s *Service) AddVisualExample(ctx context.Context, widgetID uuid.UUID, in AddVisualExampleInput) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeConsistency, widgetID)
	if err != nil {
		return nil, err
	}
	if !c.ConsistencyWidget.HasVisualExample {
		return nil, shared.NewDomainError("INVALID_STATE", "Visual examples are not enabled for this widget")
	}
	key, err := s.images.Store(ctx, media.PrefixVisualExamples, widgetID, in.FileName, in.Image)
	if err != nil {
		return nil, err
	}
	if _, err := c.ConsistencyWidget.AddVisualExample(in.Name, in.Description, key); err != nil {
		s.images.Delete(ctx, key)
		return nil, err
	}
	resp, err := s.saveWidget(ctx, c, category.WidgetTypeConsistency)
	if err != nil {
		s.images.Delete(ctx, key)
		return nil, err
	}
	return resp, nil
}

// DeleteVisualExample detaches a visual example and deletes its image
func (s *Service) DeleteVisualExample(ctx context.Context, widgetID, exampleID uuid.UUID) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeConsistency, widgetID)
	if err != nil {
		return nil, err
	}
	example, err := c.ConsistencyWidget.RemoveVisualExample(exampleID)
	if err != nil {
		return nil, err
	}
	resp, err := s.saveWidget(ctx, c, category.WidgetTypeConsistency)
	if err != nil {
		return nil, err
	}
	s.images.Delete(ctx, example.ImageKey)
	return resp, nil
}

// AddLink attaches an external reference
func (s *Service) AddLink(ctx context.Context, widgetID uuid.UUID, req AddLinkRequest) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeConsistency, widgetID)
	if err != nil {
		return nil, err
	}
	if _, err := c.ConsistencyWidget.AddLink(req.URL, req.DisplayText); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeConsistency)
}

// DeleteLink detaches a link
func (s *Service) DeleteLink(ctx context.Context, widgetID, linkID uuid.UUID) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeConsistency, widgetID)
	if err != nil {
		return nil, err
	}
	if err := c.ConsistencyWidget.RemoveLink(linkID); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeConsistency)
}

// SetOtherText sets the free text guidance
func (s *Service) SetOtherText(ctx context.Context, widgetID uuid.UUID, req SetOtherTextRequest) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeConsistency, widgetID)
	if err != nil {
		return nil, err
	}
	if err := c.ConsistencyWidget.SetOtherText(req.OtherText); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeConsistency)
}

// AddScore adds a selectable score
func (s *Service) AddScore(ctx context.Context, widgetID uuid.UUID, req AddScoreRequest) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeResultsCapture, widgetID)
	if err != nil {
		return nil, err
	}
	if _, err := c.ResultsCaptureWidget.AddScore(req.Score, req.HelpText); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeResultsCapture)
}

// DeleteScore removes a score that no result has been graded with
func (s *Service) DeleteScore(ctx context.Context, widgetID, scoreID uuid.UUID) (*WidgetResponse, error) {
	c, err := s.loadByWidget(ctx, category.WidgetTypeResultsCapture, widgetID)
	if err != nil {
		return nil, err
	}
	if _, ok := c.ResultsCaptureWidget.FindScore(scoreID); !ok {
		return nil, shared.NewDomainError("NOT_FOUND", "Score not found")
	}
	used, err := s.results.CountByScore(ctx, scoreID)
	if err != nil {
		return nil, err
	}
	if used > 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Score is used by recorded results and cannot be deleted")
	}
	if err := c.ResultsCaptureWidget.RemoveScore(scoreID); err != nil {
		return nil, err
	}
	return s.saveWidget(ctx, c, category.WidgetTypeResultsCapture)
}
