package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/storage"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

// ErrNotImage is returned when image analysis is requested for a
// non-image upload.
var ErrNotImage = errors.New("analysis: upload is not an image")

// Vision is the slice of the AI adapter the analyzer needs.
type Vision interface {
	AnalyzeImage(ctx context.Context, imageBase64, prompt string) (minimax.ImageAnalysis, error)
}

// Analyzer attaches AI descriptions to uploaded photos.
type Analyzer struct {
	store       store.Store
	objects     storage.ObjectStore
	vision      Vision
	concurrency int
	now         func() time.Time
}

func NewAnalyzer(st store.Store, objects storage.ObjectStore, vision Vision, concurrency int) *Analyzer {
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Analyzer{store: st, objects: objects, vision: vision, concurrency: concurrency, now: time.Now}
}

// Result summarizes a bulk analysis run.
type Result struct {
	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// AnalyzeUpload analyzes a single image upload and persists the result.
func (a *Analyzer) AnalyzeUpload(ctx context.Context, uploadID string) (map[string]any, error) {
	upload, ok, err := a.store.GetUpload(uploadID)
	if err != nil {
		return nil, fmt.Errorf("load upload: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("upload %s not found", uploadID)
	}
	if upload.FileType != domain.FileImage {
		return nil, ErrNotImage
	}
	analysis := a.analyzeOne(ctx, upload)
	if err := a.store.SetUploadAnalysis(upload.ID, analysis); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	if analysis["status"] == "error" {
		return analysis, fmt.Errorf("analyze upload %s: %v", upload.ID, analysis["error"])
	}
	return analysis, nil
}

// AnalyzeProjectImages runs vision analysis over every pending image upload
// of the project through a bounded worker pool. One failed file is recorded
// as such and does not stop the rest.
func (a *Analyzer) AnalyzeProjectImages(ctx context.Context, projectID string) (Result, error) {
	uploads, err := a.store.ListUploadsByProject(projectID)
	if err != nil {
		return Result{}, fmt.Errorf("list uploads: %w", err)
	}

	var mu sync.Mutex
	var res Result

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, upload := range uploads {
		if upload.FileType != domain.FileImage || len(upload.AIAnalysis) > 0 {
			res.Skipped++
			continue
		}
		u := upload
		g.Go(func() error {
			analysis := a.analyzeOne(gctx, u)
			if err := a.store.SetUploadAnalysis(u.ID, analysis); err != nil {
				slog.Error("save upload analysis", "upload_id", u.ID, "error", err)
				analysis = map[string]any{"status": "error"}
			}
			mu.Lock()
			if analysis["status"] == "error" {
				res.Failed++
			} else {
				res.Analyzed++
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	return res, nil
}

func (a *Analyzer) analyzeOne(ctx context.Context, upload domain.Upload) map[string]any {
	data, err := a.readObject(ctx, upload.FileURL)
	if err != nil {
		slog.Error("read upload object", "upload_id", upload.ID, "error", err)
		return map[string]any{"status": "error", "error": err.Error()}
	}
	analysis, err := a.vision.AnalyzeImage(ctx, base64.StdEncoding.EncodeToString(data), "")
	if err != nil {
		slog.Error("vision analysis failed", "upload_id", upload.ID, "error", err)
		return map[string]any{"status": "error", "error": err.Error()}
	}
	return map[string]any{
		"status":      "ok",
		"description": analysis.Description,
		"analyzedAt":  a.now().UTC().Format(time.RFC3339),
	}
}

func (a *Analyzer) readObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := a.objects.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
