package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"estatescout/internal/ids"
	"estatescout/internal/models"
	"estatescout/internal/queue"
	"estatescout/internal/repository"
	"estatescout/internal/security"
)

// ListingCache holds the rendered listing index.
type ListingCache interface {
	Get(ctx context.Context, out any) (bool, error)
	Set(ctx context.Context, value any) error
	Invalidate(ctx context.Context) error
}

// TaskQueue accepts background work for the media worker.
type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

type PropertyService struct {
	properties repository.PropertyStore
	users      repository.UserStore
	media      *MediaService
	cache      ListingCache
	tasks      TaskQueue
	log        zerolog.Logger
}

func NewPropertyService(properties repository.PropertyStore, users repository.UserStore, media *MediaService, cache ListingCache, tasks TaskQueue, log zerolog.Logger) *PropertyService {
	return &PropertyService{
		properties: properties,
		users:      users,
		media:      media,
		cache:      cache,
		tasks:      tasks,
		log:        log,
	}
}

type CreatePropertyInput struct {
	Title       string
	Description string
	Type        string
	Amenities   []string
	Area        float64
	Price       float64
	Location    string
	Images      []File
	Thumbnail   *File
}

func (s *PropertyService) List(ctx context.Context) ([]models.PropertyWithOwner, error) {
	var cached []models.PropertyWithOwner
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, &cached)
		if err != nil {
			s.log.Warn().Err(err).Msg("listing cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	list, err := s.properties.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	out, err := s.withOwners(ctx, list)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, out); err != nil {
			s.log.Warn().Err(err).Msg("listing cache write failed")
		}
	}
	return out, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (models.PropertyWithOwner, error) {
	property, err := s.lookup(ctx, id)
	if err != nil {
		return models.PropertyWithOwner{}, err
	}
	out, err := s.withOwners(ctx, []models.Property{property})
	if err != nil {
		return models.PropertyWithOwner{}, err
	}
	return out[0], nil
}

func (s *PropertyService) Create(ctx context.Context, actor security.Identity, input CreatePropertyInput) (models.Property, error) {
	if actor.UserID == "" {
		return models.Property{}, ErrUnauthorized
	}
	if input.Thumbnail == nil || len(input.Images) == 0 {
		return models.Property{}, fmt.Errorf("%w: thumbnail and images are required", ErrInvalidInput)
	}
	if len(input.Images) > models.MaxPropertyImages {
		return models.Property{}, fmt.Errorf("%w: at most %d images allowed", ErrInvalidInput, models.MaxPropertyImages)
	}
	if strings.TrimSpace(input.Title) == "" {
		return models.Property{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Price < 0 || input.Area < 0 {
		return models.Property{}, fmt.Errorf("%w: price and area must not be negative", ErrInvalidInput)
	}

	if _, err := s.users.GetByID(ctx, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.Property{}, ErrUnauthorized
		}
		return models.Property{}, fmt.Errorf("lookup owner: %w", err)
	}

	images, err := s.media.UploadAll(ctx, input.Images)
	if err != nil {
		return models.Property{}, err
	}
	thumbnail, err := s.media.Upload(ctx, *input.Thumbnail)
	if err != nil {
		s.media.Discard(ctx, images...)
		return models.Property{}, err
	}

	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	now := time.Now().UTC()
	property := models.Property{
		ID:          ids.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Type:        input.Type,
		Amenities:   amenities,
		Area:        input.Area,
		Price:       input.Price,
		Location:    input.Location,
		Images:      images,
		Thumbnail:   thumbnail,
		OwnerID:     actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.properties.Create(ctx, property); err != nil {
		s.media.Discard(ctx, append(images, thumbnail)...)
		return models.Property{}, fmt.Errorf("create property: %w", err)
	}
	if err := s.users.AddPost(ctx, actor.UserID, property.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", actor.UserID).Str("property_id", property.ID).Msg("link post to owner failed")
	}
	s.invalidate(ctx)

	s.log.Info().Str("user_id", actor.UserID).Str("property_id", property.ID).Msg("property created")
	return property, nil
}

func (s *PropertyService) Update(ctx context.Context, actor security.Identity, id string, update models.PropertyUpdate) (models.Property, error) {
	property, err := s.lookup(ctx, id)
	if err != nil {
		return models.Property{}, err
	}
	if !security.CanMutate(property, actor) {
		return models.Property{}, ErrNotAuthorized
	}
	if (update.Price != nil && *update.Price < 0) || (update.Area != nil && *update.Area < 0) {
		return models.Property{}, fmt.Errorf("%w: price and area must not be negative", ErrInvalidInput)
	}

	updated, err := s.properties.Update(ctx, id, update)
	if err != nil {
		return models.Property{}, fmt.Errorf("update property: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *PropertyService) Delete(ctx context.Context, actor security.Identity, id string) error {
	property, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if !security.CanMutate(property, actor) {
		return ErrNotAuthorized
	}

	if err := s.properties.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if err := s.users.RemovePost(ctx, property.OwnerID, property.ID); err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.log.Warn().Err(err).Str("property_id", id).Msg("unlink post from owner failed")
	}
	s.invalidate(ctx)
	s.enqueuePurge(ctx, property, "property deleted")
	return nil
}

// ListByOwner returns an owner's listings, newest first. An unknown owner
// has no listings.
func (s *PropertyService) ListByOwner(ctx context.Context, ownerID string) ([]models.PropertyWithOwner, error) {
	if !ids.Valid(ownerID) {
		return []models.PropertyWithOwner{}, nil
	}
	list, err := s.properties.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner properties: %w", err)
	}
	return s.withOwners(ctx, list)
}

// SweepOrphans deletes listings whose owner account is gone and removes their
// media. It returns the number of listings deleted.
func (s *PropertyService) SweepOrphans(ctx context.Context) (int, error) {
	list, err := s.properties.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list properties: %w", err)
	}
	if len(list) == 0 {
		return 0, nil
	}
	owners, err := s.users.GetMany(ctx, ownerIDs(list))
	if err != nil {
		return 0, fmt.Errorf("load owners: %w", err)
	}

	removed := 0
	for _, p := range list {
		if _, ok := owners[p.OwnerID]; ok {
			continue
		}
		if err := s.properties.Delete(ctx, p.ID); err != nil && !errors.Is(err, repository.ErrPropertyNotFound) {
			return removed, fmt.Errorf("delete orphan %s: %w", p.ID, err)
		}
		if err := s.media.Remove(ctx, s.media.Keys(mediaURLs(p)...)...); err != nil {
			s.log.Warn().Err(err).Str("property_id", p.ID).Msg("remove orphan media failed")
		}
		removed++
	}
	if removed > 0 {
		s.invalidate(ctx)
	}
	return removed, nil
}

// lookup treats ids that could never have been issued as missing.
func (s *PropertyService) lookup(ctx context.Context, id string) (models.Property, error) {
	if !ids.Valid(id) {
		return models.Property{}, repository.ErrPropertyNotFound
	}
	return s.properties.GetByID(ctx, id)
}

func (s *PropertyService) withOwners(ctx context.Context, list []models.Property) ([]models.PropertyWithOwner, error) {
	out := make([]models.PropertyWithOwner, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}
	owners, err := s.users.GetMany(ctx, ownerIDs(list))
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	for _, p := range list {
		item := models.PropertyWithOwner{Property: p}
		if owner, ok := owners[p.OwnerID]; ok {
			item.Owner = &models.OwnerSummary{
				ID:             owner.ID,
				Name:           owner.Name,
				Email:          owner.Email,
				ProfilePicture: owner.ProfilePicture,
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *PropertyService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("listing cache invalidate failed")
	}
}

func (s *PropertyService) enqueuePurge(ctx context.Context, p models.Property, reason string) {
	keys := s.media.Keys(mediaURLs(p)...)
	if len(keys) == 0 || s.tasks == nil {
		return
	}
	task := queue.Task{Type: queue.TaskPurge, Keys: keys, Reason: reason}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("property_id", p.ID).Msg("enqueue purge failed")
	}
}

func ownerIDs(list []models.Property) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, p := range list {
		if _, ok := seen[p.OwnerID]; ok || p.OwnerID == "" {
			continue
		}
		seen[p.OwnerID] = struct{}{}
		out = append(out, p.OwnerID)
	}
	return out
}

func mediaURLs(p models.Property) []string {
	urls := append([]string{}, p.Images...)
	if p.Thumbnail != "" {
		urls = append(urls, p.Thumbnail)
	}
	return urls
}
