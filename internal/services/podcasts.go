package services

import (
	"context"

	"github.com/desertthunder/spotx/internal/api"
	"github.com/desertthunder/spotx/internal/models"
)

type ShowService struct{ service }

func (s *ShowService) saved() library {
	return library{service: s.service, route: "me/shows", max: MaxIDs}
}

func (s *ShowService) Get(ctx context.Context, id string, opts *api.Options) (*models.Show, error) {
	seg, err := segment("show id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Show](ctx, s.service, "shows/"+seg, opts)
}

func (s *ShowService) GetMany(ctx context.Context, ids []string, opts *api.Options) ([]*models.SimplifiedShow, error) {
	return getMany[models.SimplifiedShow](ctx, s.service, "shows", ids, MaxIDs, opts)
}

func (s *ShowService) Episodes(ctx context.Context, id string, opts *api.Options) (*models.Page[models.SimplifiedEpisode], error) {
	seg, err := segment("show id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Page[models.SimplifiedEpisode]](ctx, s.service, "shows/"+seg+"/episodes", opts)
}

func (s *ShowService) Saved(ctx context.Context, opts *api.Options) (*models.Page[models.SavedShow], error) {
	return get[models.Page[models.SavedShow]](ctx, s.service, "me/shows", opts)
}

func (s *ShowService) Save(ctx context.Context, ids []string) error { return s.saved().save(ctx, ids) }

func (s *ShowService) Remove(ctx context.Context, ids []string) error {
	return s.saved().remove(ctx, ids)
}

func (s *ShowService) CheckSaved(ctx context.Context, ids []string) ([]bool, error) {
	return s.saved().contains(ctx, ids)
}

type EpisodeService struct{ service }

func (s *EpisodeService) Get(ctx context.Context, id string, opts *api.Options) (*models.Episode, error) {
	seg, err := segment("episode id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Episode](ctx, s.service, "episodes/"+seg, opts)
}

func (s *EpisodeService) GetMany(ctx context.Context, ids []string, opts *api.Options) ([]*models.Episode, error) {
	return getMany[models.Episode](ctx, s.service, "episodes", ids, MaxIDs, opts)
}

type AudiobookService struct{ service }

func (s *AudiobookService) saved() library {
	return library{service: s.service, route: "me/audiobooks", max: MaxIDs}
}

func (s *AudiobookService) Get(ctx context.Context, id string, opts *api.Options) (*models.Audiobook, error) {
	seg, err := segment("audiobook id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Audiobook](ctx, s.service, "audiobooks/"+seg, opts)
}

func (s *AudiobookService) GetMany(ctx context.Context, ids []string, opts *api.Options) ([]*models.Audiobook, error) {
	return getMany[models.Audiobook](ctx, s.service, "audiobooks", ids, MaxIDs, opts)
}

func (s *AudiobookService) Chapters(ctx context.Context, id string, opts *api.Options) (*models.Page[models.SimplifiedChapter], error) {
	seg, err := segment("audiobook id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Page[models.SimplifiedChapter]](ctx, s.service, "audiobooks/"+seg+"/chapters", opts)
}

func (s *AudiobookService) Saved(ctx context.Context, opts *api.Options) (*models.Page[models.SavedAudiobook], error) {
	return get[models.Page[models.SavedAudiobook]](ctx, s.service, "me/audiobooks", opts)
}

func (s *AudiobookService) Save(ctx context.Context, ids []string) error {
	return s.saved().save(ctx, ids)
}

func (s *AudiobookService) Remove(ctx context.Context, ids []string) error {
	return s.saved().remove(ctx, ids)
}

func (s *AudiobookService) CheckSaved(ctx context.Context, ids []string) ([]bool, error) {
	return s.saved().contains(ctx, ids)
}

type ChapterService struct{ service }

func (s *ChapterService) Get(ctx context.Context, id string, opts *api.Options) (*models.Chapter, error) {
	seg, err := segment("chapter id", id)
	if err != nil {
		return nil, err
	}
	return get[models.Chapter](ctx, s.service, "chapters/"+seg, opts)
}

func (s *ChapterService) GetMany(ctx context.Context, ids []string, opts *api.Options) ([]*models.Chapter, error) {
	return getMany[models.Chapter](ctx, s.service, "chapters", ids, MaxIDs, opts)
}
