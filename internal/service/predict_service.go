package service

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"vertexadapters/internal/domain"
	"vertexadapters/internal/port"
	"vertexadapters/internal/prompt"
)

// PredictService runs the adapter pipeline for one provider: classify items,
// extract requests, invoke the model, package annotations. It holds only the
// invoker and platform ports; no state is kept across batches.
type PredictService struct {
	invoker   port.ModelInvoker
	items     port.ItemSource
	annotator port.Annotator
	updater   port.ItemUpdater
	extractor *prompt.Extractor
}

// NewPredictService creates a pipeline for the given invoker. The annotator
// and updater may be nil; results are then only returned, not persisted.
func NewPredictService(inv port.ModelInvoker, items port.ItemSource, annotator port.Annotator, updater port.ItemUpdater) *PredictService {
	return &PredictService{
		invoker:   inv,
		items:     items,
		annotator: annotator,
		updater:   updater,
		extractor: prompt.NewExtractor(items),
	}
}

// Provider returns the underlying provider name.
func (s *PredictService) Provider() string {
	return s.invoker.Name()
}

// PrepareItem classifies an inbound item. Prompt items are downloaded and
// decoded; direct image/PDF files pass through unread when the provider
// accepts documents; anything else is dropped with a warning (nil, nil).
func (s *PredictService) PrepareItem(ctx context.Context, item *domain.Item) (*domain.BatchItem, error) {
	caps := s.invoker.Capabilities()
	switch prompt.ClassifyItem(item, caps.Document) {
	case domain.ItemPrompt:
		data, err := s.items.Stream(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		env, err := prompt.DecodeEnvelope(data)
		if err != nil {
			return nil, err
		}
		return &domain.BatchItem{Item: item, Envelope: env}, nil
	case domain.ItemDirectFile:
		return &domain.BatchItem{Item: item}, nil
	default:
		logrus.WithFields(logrus.Fields{
			"item_id":  item.ID,
			"mimetype": item.MimeType,
			"provider": s.invoker.Name(),
		}).Warn("item is not a prompt item or supported file, dropping from batch")
		return nil, nil
	}
}

// Predict processes the batch sequentially and returns exactly one annotation
// collection per batch item. Per-prompt failures are logged and skipped; they
// never fail the batch.
func (s *PredictService) Predict(ctx context.Context, batch []domain.BatchItem) []domain.AnnotationCollection {
	collections := make([]domain.AnnotationCollection, 0, len(batch))
	for _, batchItem := range batch {
		var itemID string
		if batchItem.Item != nil {
			itemID = batchItem.Item.ID
		}
		coll := domain.NewAnnotationCollection(itemID)

		switch {
		case batchItem.Envelope != nil:
			s.predictEnvelope(ctx, batchItem.Envelope, coll)
		case batchItem.Item != nil:
			s.predictDirectFile(ctx, batchItem.Item)
		default:
			logrus.WithField("provider", s.invoker.Name()).Error("unsupported batch item, skipping")
		}

		collections = append(collections, *coll)
	}
	return collections
}

func (s *PredictService) predictEnvelope(ctx context.Context, env *domain.PromptEnvelope, coll *domain.AnnotationCollection) {
	caps := s.invoker.Capabilities()
	for _, name := range sortedPromptNames(env) {
		req, err := s.extractor.Extract(ctx, name, env.Prompts[name], caps)
		if err != nil {
			s.logPromptFailure(name, err)
			continue
		}
		text, err := s.invoker.Invoke(ctx, req)
		if err != nil {
			s.logPromptFailure(name, err)
			continue
		}
		if text == "" {
			logrus.WithFields(logrus.Fields{
				"prompt_id": name,
				"provider":  s.invoker.Name(),
			}).Warn("no response generated for prompt")
			continue
		}
		coll.Add(text, name, s.invoker.Info())
	}
}

// predictDirectFile handles a direct image/PDF item: the model text lands on
// the item description rather than an annotation.
func (s *PredictService) predictDirectFile(ctx context.Context, item *domain.Item) {
	log := logrus.WithFields(logrus.Fields{
		"item_id":  item.ID,
		"provider": s.invoker.Name(),
	})

	data, err := s.items.Stream(ctx, item.ID)
	if err != nil {
		log.WithError(err).Error("downloading file item failed")
		return
	}

	var mime string
	switch {
	case strings.HasPrefix(item.MimeType, "image/"):
		mime = domain.ImageMIME(item.MimeType)
	case strings.HasPrefix(item.MimeType, "application/pdf"):
		mime = "application/pdf"
	default:
		log.WithField("mimetype", item.MimeType).Warn("unsupported mimetype for direct file")
		return
	}

	text, err := s.invoker.Invoke(ctx, &domain.ResolvedRequest{
		DocumentURL: prompt.DataURL(mime, data),
	})
	if err != nil {
		s.logPromptFailure(item.ID, err)
		return
	}
	if text == "" {
		log.Warn("no text extracted from item")
		return
	}
	if s.updater == nil {
		log.Warn("no item updater configured, discarding direct file result")
		return
	}
	if err := s.updater.SetDescription(ctx, item.ID, text); err != nil {
		log.WithError(err).Error("updating item description failed")
	}
}

// PredictItems fetches the named items, prepares them, runs the batch, and
// uploads non-empty collections back to the platform.
func (s *PredictService) PredictItems(ctx context.Context, itemIDs []string) ([]domain.AnnotationCollection, error) {
	batch := make([]domain.BatchItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, err := s.items.GetItem(ctx, id)
		if err != nil {
			return nil, err
		}
		batchItem, err := s.PrepareItem(ctx, item)
		if err != nil {
			return nil, err
		}
		if batchItem == nil {
			continue
		}
		batch = append(batch, *batchItem)
	}

	collections := s.Predict(ctx, batch)

	if s.annotator != nil {
		for _, coll := range collections {
			if len(coll.Annotations) == 0 || coll.ItemID == "" {
				continue
			}
			if err := s.annotator.UploadAnnotations(ctx, coll.ItemID, coll.Annotations); err != nil {
				logrus.WithError(err).WithField("item_id", coll.ItemID).Error("uploading annotations failed")
			}
		}
	}
	return collections, nil
}

func (s *PredictService) logPromptFailure(promptID string, err error) {
	log := logrus.WithFields(logrus.Fields{
		"prompt_id": promptID,
		"provider":  s.invoker.Name(),
	})
	if domain.IsSkip(err) {
		log.Warn(err.Error())
		return
	}
	log.WithError(err).Error("model invocation failed, skipping prompt")
}

// sortedPromptNames returns prompt names in a stable order so batch output is
// deterministic.
func sortedPromptNames(env *domain.PromptEnvelope) []string {
	names := make([]string, 0, len(env.Prompts))
	for name := range env.Prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
