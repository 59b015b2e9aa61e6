package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/minimax"
	"github.com/Lovecoded2024/timejournal/pkg/storage"
	"github.com/Lovecoded2024/timejournal/pkg/store"
)

type visionFunc func(ctx context.Context, imageBase64, prompt string) (minimax.ImageAnalysis, error)

func (f visionFunc) AnalyzeImage(ctx context.Context, imageBase64, prompt string) (minimax.ImageAnalysis, error) {
	return f(ctx, imageBase64, prompt)
}

func seedImage(t *testing.T, st store.Store, objects storage.ObjectStore, id string) {
	t.Helper()
	key := "p1/" + id + ".jpg"
	if err := objects.Put(context.Background(), key, bytes.NewReader([]byte("jpeg-bytes-"+id)), -1, "image/jpeg"); err != nil {
		t.Fatalf("put object: %v", err)
	}
	err := st.CreateUpload(domain.Upload{
		ID: id, ProjectID: "p1", FileType: domain.FileImage,
		FileURL: key, FileName: id + ".jpg",
	})
	if err != nil {
		t.Fatalf("create upload: %v", err)
	}
}

func TestAnalyzeProjectImagesMarksFailuresAndContinues(t *testing.T) {
	st := store.NewMemoryStore()
	objects := storage.NewMemoryObjectStore()
	for _, id := range []string{"u1", "u2", "u3"} {
		seedImage(t, st, objects, id)
	}
	// non-image upload is skipped, not failed
	_ = st.CreateUpload(domain.Upload{ID: "doc1", ProjectID: "p1", FileType: domain.FileDocument, FileURL: "p1/doc1.pdf"})

	var calls atomic.Int32
	a := NewAnalyzer(st, objects, visionFunc(func(_ context.Context, imageBase64, _ string) (minimax.ImageAnalysis, error) {
		calls.Add(1)
		if strings.Contains(imageBase64, encode("jpeg-bytes-u2")) {
			return minimax.ImageAnalysis{}, errors.New("provider rejected image")
		}
		return minimax.ImageAnalysis{Description: "一张老照片"}, nil
	}), 2)

	res, err := a.AnalyzeProjectImages(context.Background(), "p1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Analyzed != 2 || res.Failed != 1 || res.Skipped != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("vision calls = %d, want 3", got)
	}

	u2, _, _ := st.GetUpload("u2")
	if u2.AIAnalysis["status"] != "error" {
		t.Fatalf("failed upload should carry error status: %+v", u2.AIAnalysis)
	}
	u1, _, _ := st.GetUpload("u1")
	if u1.AIAnalysis["status"] != "ok" || u1.AIAnalysis["description"] != "一张老照片" {
		t.Fatalf("analysis not attached: %+v", u1.AIAnalysis)
	}
}

func TestAnalyzeProjectImagesSkipsAlreadyAnalyzed(t *testing.T) {
	st := store.NewMemoryStore()
	objects := storage.NewMemoryObjectStore()
	seedImage(t, st, objects, "u1")
	_ = st.SetUploadAnalysis("u1", map[string]any{"status": "ok"})

	a := NewAnalyzer(st, objects, visionFunc(func(context.Context, string, string) (minimax.ImageAnalysis, error) {
		t.Fatal("vision should not be called for analyzed uploads")
		return minimax.ImageAnalysis{}, nil
	}), 2)

	res, err := a.AnalyzeProjectImages(context.Background(), "p1")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Skipped != 1 || res.Analyzed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAnalyzeUploadRejectsNonImage(t *testing.T) {
	st := store.NewMemoryStore()
	_ = st.CreateUpload(domain.Upload{ID: "doc1", ProjectID: "p1", FileType: domain.FileDocument, FileURL: "p1/doc1.pdf"})

	a := NewAnalyzer(st, storage.NewMemoryObjectStore(), visionFunc(func(context.Context, string, string) (minimax.ImageAnalysis, error) {
		return minimax.ImageAnalysis{}, nil
	}), 2)

	if _, err := a.AnalyzeUpload(context.Background(), "doc1"); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}
