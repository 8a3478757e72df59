package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ojttracker.com/ojttracker/ojt/model"
)

// Board publishes announcements for one tenant.
type Board struct {
	Announcements AnnouncementStore
	Now           func() time.Time
}

func (b *Board) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

type AnnouncementInput struct {
	Title      string
	Content    string
	Department string
	IsForAll   bool
	PostedBy   string
}

func validateAnnouncement(a *model.Announcement) error {
	a.Title = strings.TrimSpace(a.Title)
	a.Content = strings.TrimSpace(a.Content)
	if a.Title == "" || a.Content == "" {
		return fmt.Errorf("%w: title and content are required", ErrInvalidAnnouncement)
	}
	if !a.IsForAll && a.Department == "" {
		return fmt.Errorf("%w: choose a department or post for everyone", ErrInvalidAnnouncement)
	}
	return nil
}

func (b *Board) Post(ctx context.Context, in AnnouncementInput) (*model.Announcement, error) {
	now := b.now()
	a := &model.Announcement{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Content:    in.Content,
		Department: in.Department,
		PostedBy:   in.PostedBy,
		IsForAll:   in.IsForAll,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := validateAnnouncement(a); err != nil {
		return nil, err
	}
	if err := b.Announcements.CreateAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("post announcement: %w", err)
	}
	return a, nil
}

func (b *Board) Find(ctx context.Context, id string) (*model.Announcement, error) {
	return b.Announcements.FindAnnouncement(ctx, id)
}

// Update applies patch and revalidates the result.
func (b *Board) Update(ctx context.Context, id string, patch model.AnnouncementPatch) (*model.Announcement, error) {
	a, err := b.Announcements.FindAnnouncement(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Department != nil {
		a.Department = *patch.Department
	}
	if patch.IsForAll != nil {
		a.IsForAll = *patch.IsForAll
	}
	if patch.IsActive != nil {
		a.IsActive = *patch.IsActive
	}
	if err := validateAnnouncement(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = b.now()
	if err := b.Announcements.SaveAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("update announcement %s: %w", id, err)
	}
	return a, nil
}

func (b *Board) Delete(ctx context.Context, id string) error {
	return b.Announcements.DeleteAnnouncement(ctx, id)
}

// List returns announcements newest first.
func (b *Board) List(ctx context.Context, f model.AnnouncementFilter) ([]model.Announcement, error) {
	return b.Announcements.ListAnnouncements(ctx, f)
}
