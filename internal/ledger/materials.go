package ledger

import (
	"context"
	"slices"
	"strings"
)

// CreateMaterial validates in and stores it as the newest material of userID.
func (s *Store) CreateMaterial(ctx context.Context, userID string, in MaterialInput) (Material, error) {
	if err := in.Validate(); err != nil {
		return Material{}, err
	}
	now := s.now()
	return s.UpsertMaterial(ctx, userID, Material{
		Title:     in.Title,
		Subject:   in.Subject,
		Type:      in.Type,
		Content:   in.Content,
		FileURL:   in.FileURL,
		Tags:      in.Tags,
		IsPublic:  in.IsPublic,
		CreatedAt: now,
	})
}

// UpsertMaterial inserts m as the newest material, or replaces the material
// with the same id in place. Replacing keeps the stored creation time and
// view count.
func (s *Store) UpsertMaterial(ctx context.Context, userID string, m Material) (Material, error) {
	if err := m.Input().Validate(); err != nil {
		return Material{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Material{}, err
	}

	now := s.now()
	m.UserID = userID
	m.Title = strings.TrimSpace(m.Title)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Tags = normalizeTags(m.Tags)
	m.UpdatedAt = now

	prev := c.materials
	idx := indexMaterial(prev, m.ID)
	if idx < 0 {
		if m.ID == "" {
			m.ID = s.newID()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.Views < 0 {
			m.Views = 0
		}
		c.materials = append([]Material{m}, prev...)
	} else {
		m.CreatedAt = prev[idx].CreatedAt
		m.Views = prev[idx].Views
		c.materials = slices.Clone(prev)
		c.materials[idx] = m
	}

	if err := s.write(ctx, Key(MaterialsKeyPrefix, userID), c.materials); err != nil {
		c.materials = prev
		return Material{}, err
	}
	return cloneMaterial(m), nil
}

// RemoveMaterial deletes the material with id.
func (s *Store) RemoveMaterial(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	idx := indexMaterial(c.materials, id)
	if idx < 0 {
		return ErrNotFound
	}

	prev := c.materials
	c.materials = slices.Delete(slices.Clone(prev), idx, idx+1)
	if err := s.write(ctx, Key(MaterialsKeyPrefix, userID), c.materials); err != nil {
		c.materials = prev
		return err
	}
	return nil
}

// IncrementMaterialViews bumps the view counter of the material with id and
// returns the updated material.
func (s *Store) IncrementMaterialViews(ctx context.Context, userID, id string) (Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Material{}, err
	}
	idx := indexMaterial(c.materials, id)
	if idx < 0 {
		return Material{}, ErrNotFound
	}

	prev := c.materials
	c.materials = slices.Clone(prev)
	c.materials[idx].Views++
	if err := s.write(ctx, Key(MaterialsKeyPrefix, userID), c.materials); err != nil {
		c.materials = prev
		return Material{}, err
	}
	return cloneMaterial(c.materials[idx]), nil
}

// Material returns the material with id.
func (s *Store) Material(ctx context.Context, userID, id string) (Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Material{}, err
	}
	idx := indexMaterial(c.materials, id)
	if idx < 0 {
		return Material{}, ErrNotFound
	}
	return cloneMaterial(c.materials[idx]), nil
}

// Input returns the editable fields of m.
func (m Material) Input() MaterialInput {
	return MaterialInput{
		Title:    m.Title,
		Subject:  m.Subject,
		Type:     m.Type,
		Content:  m.Content,
		FileURL:  m.FileURL,
		Tags:     m.Tags,
		IsPublic: m.IsPublic,
	}
}

func indexMaterial(ms []Material, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(ms, func(m Material) bool { return m.ID == id })
}
