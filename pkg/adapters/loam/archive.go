package loam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/loam"
	"github.com/aretw0/lousa/pkg/domain"
	"github.com/google/uuid"
)

const imagesDir = "images"

// Archive adapts a Loam repository to ports.SolutionArchive.
// Each solution is a Markdown document whose body is the answer; the board image is
// written next to it under images/.
type Archive struct {
	Repo *loam.TypedRepository[SolutionMetadata]
	root string
}

// New creates an archive over repo, rooted at dir.
func New(repo *loam.TypedRepository[SolutionMetadata], dir string) *Archive {
	return &Archive{Repo: repo, root: dir}
}

// Open initialises a Loam repository in dir (without versioning) and wraps it.
func Open(dir string) (*Archive, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid archive path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	repo, err := loam.Init(absPath, loam.WithVersioning(false), loam.WithForceTemp(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[SolutionMetadata](repo), absPath), nil
}

// Archive stores sol and returns its ID.
func (a *Archive) Archive(ctx context.Context, sol domain.Solution) (string, error) {
	if sol.ID == "" {
		sol.ID = uuid.NewString()
	}
	if sol.CreatedAt.IsZero() {
		sol.CreatedAt = time.Now()
	}

	meta := SolutionMetadata{
		ID:        sol.ID,
		BoardID:   sol.BoardID,
		Provider:  sol.Provider,
		Model:     sol.Model,
		Prompt:    sol.Prompt,
		CreatedAt: sol.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	// 1. Image next to the document
	if len(sol.Image) > 0 {
		rel := filepath.ToSlash(filepath.Join(imagesDir, sol.ID+".png"))
		if err := os.MkdirAll(filepath.Join(a.root, imagesDir), 0755); err != nil {
			return "", fmt.Errorf("failed to create image directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(a.root, filepath.FromSlash(rel)), sol.Image, 0644); err != nil {
			return "", fmt.Errorf("failed to write solution image: %w", err)
		}
		meta.Image = rel
	}

	// 2. Markdown document with frontmatter
	err := a.Repo.Save(ctx, &loam.DocumentModel[SolutionMetadata]{
		ID:      sol.ID,
		Content: sol.Content,
		Data:    meta,
	})
	if err != nil {
		return "", fmt.Errorf("loam save failed for %s: %w", sol.ID, err)
	}
	return sol.ID, nil
}

// Get loads an archived solution.
func (a *Archive) Get(ctx context.Context, id string) (domain.Solution, error) {
	doc, err := a.Repo.Get(ctx, id)
	if err != nil {
		return domain.Solution{}, fmt.Errorf("%w: %s: %v", domain.ErrSolutionNotFound, id, err)
	}

	sol := domain.Solution{
		ID:       doc.Data.ID,
		BoardID:  doc.Data.BoardID,
		Provider: doc.Data.Provider,
		Model:    doc.Data.Model,
		Prompt:   doc.Data.Prompt,
		Content:  doc.Content,
	}
	if sol.ID == "" {
		sol.ID = trimExtension(doc.ID)
	}
	if t, err := time.Parse(time.RFC3339Nano, doc.Data.CreatedAt); err == nil {
		sol.CreatedAt = t
	}
	if doc.Data.Image != "" {
		img, err := os.ReadFile(filepath.Join(a.root, filepath.FromSlash(doc.Data.Image)))
		if err != nil {
			return domain.Solution{}, fmt.Errorf("failed to read solution image: %w", err)
		}
		sol.Image = img
	}
	return sol, nil
}

// List returns the archived solution IDs.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	docs, err := a.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		id := doc.Data.ID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
