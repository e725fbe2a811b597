package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/telemetry"
)

// KnowledgeRepositoryInterface defines the persistence operations the
// knowledge service needs.
type KnowledgeRepositoryInterface interface {
	Create(ctx context.Context, e *domain.KnowledgeEntry) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	List(ctx context.Context) ([]*domain.KnowledgeEntry, error)
	Update(ctx context.Context, e *domain.KnowledgeEntry) error
	Delete(ctx context.Context, id string) error
}

// KnowledgeService manages the knowledge corpus.
type KnowledgeService struct {
	repo KnowledgeRepositoryInterface
}

func NewKnowledgeService(repo KnowledgeRepositoryInterface) *KnowledgeService {
	return &KnowledgeService{repo: repo}
}

// CreateEntryInput carries a new knowledge entry. Scope arrives in its
// string form and is parsed at this boundary.
type CreateEntryInput struct {
	Title   string
	Content string
	Scope   string
}

func (s *KnowledgeService) Create(ctx context.Context, input CreateEntryInput) (*domain.KnowledgeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Create", telemetry.SpanAttributes{
		Operation: "create_entry",
	})
	defer span.End()

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if content == "" {
		return nil, domain.ErrEmptyContent
	}
	scope, err := domain.ParseScope(input.Scope)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := &domain.KnowledgeEntry{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Scope:     scope,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		span.SetError(err)
		return nil, domain.NewStorageError("create knowledge entry", err)
	}
	return entry, nil
}

func (s *KnowledgeService) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrKnowledgeNotFound {
			return nil, err
		}
		return nil, domain.NewStorageError("load knowledge entry", err)
	}
	return entry, nil
}

func (s *KnowledgeService) List(ctx context.Context) ([]*domain.KnowledgeEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list knowledge entries", err)
	}
	return entries, nil
}

func (s *KnowledgeService) Update(ctx context.Context, id string, input CreateEntryInput) (*domain.KnowledgeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Update", telemetry.SpanAttributes{
		Operation: "update_entry",
	})
	defer span.End()

	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if content == "" {
		return nil, domain.ErrEmptyContent
	}
	scope, err := domain.ParseScope(input.Scope)
	if err != nil {
		return nil, err
	}

	entry.Title = title
	entry.Content = content
	entry.Scope = scope
	if err := s.repo.Update(ctx, entry); err != nil {
		span.SetError(err)
		if err == domain.ErrKnowledgeNotFound {
			return nil, err
		}
		return nil, domain.NewStorageError("update knowledge entry", err)
	}
	return entry, nil
}

func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Delete", telemetry.SpanAttributes{
		Operation: "delete_entry",
	})
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		if err == domain.ErrKnowledgeNotFound {
			return err
		}
		span.SetError(err)
		return domain.NewStorageError("delete knowledge entry", err)
	}
	return nil
}
