package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Lovecoded2024/timejournal/internal/analysis"
	"github.com/Lovecoded2024/timejournal/internal/util"
	"github.com/Lovecoded2024/timejournal/pkg/domain"
	"github.com/Lovecoded2024/timejournal/pkg/storage"
)

var fileTypeByExt = map[string]domain.FileType{
	".jpg":  domain.FileImage,
	".jpeg": domain.FileImage,
	".png":  domain.FileImage,
	".gif":  domain.FileImage,
	".webp": domain.FileImage,
	".mp3":  domain.FileAudio,
	".m4a":  domain.FileAudio,
	".wav":  domain.FileAudio,
	".pdf":  domain.FileDocument,
	".html": domain.FileDocument,
	".htm":  domain.FileDocument,
	".txt":  domain.FileText,
	".md":   domain.FileText,
}

// CreateUpload stores the file bytes, extracts text from documents, and
// records the upload. Text extraction failures are logged, not fatal: the
// file itself is already safe in object storage.
func (a *App) CreateUpload(ctx context.Context, userID, projectID, fileName, contentType string, data []byte) (domain.Upload, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return domain.Upload{}, err
	}
	fileName = strings.TrimSpace(filepath.Base(fileName))
	if fileName == "" || fileName == "." {
		return domain.Upload{}, validationf("请提供文件名")
	}
	fileType, ok := fileTypeByExt[strings.ToLower(filepath.Ext(fileName))]
	if !ok {
		return domain.Upload{}, unsupportedf("不支持的文件类型 %q", filepath.Ext(fileName))
	}
	if len(data) == 0 {
		return domain.Upload{}, validationf("文件内容为空")
	}

	key := storage.ObjectKey(projectID, fileName)
	if err := a.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return domain.Upload{}, fmt.Errorf("store file: %w", err)
	}

	upload := domain.Upload{
		ID:         util.NewID(),
		ProjectID:  projectID,
		FileType:   fileType,
		FileURL:    key,
		FileName:   fileName,
		FileSize:   int64(len(data)),
		UploadedAt: a.now(),
	}
	if fileType == domain.FileDocument || fileType == domain.FileText {
		text, err := analysis.ExtractText(fileName, data)
		if err != nil {
			slog.Warn("text extraction failed", "file", fileName, "error", err)
		}
		upload.OCRText = text
	}
	if err := a.store.CreateUpload(upload); err != nil {
		return domain.Upload{}, fmt.Errorf("record upload: %w", err)
	}
	return upload, nil
}

func (a *App) ListUploads(userID, projectID string) ([]domain.Upload, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return nil, err
	}
	return a.store.ListUploadsByProject(projectID)
}

// UploadDownloadURL presigns a short-lived URL for viewing an uploaded file.
func (a *App) UploadDownloadURL(ctx context.Context, userID, uploadID string) (string, error) {
	upload, err := a.ownedUpload(userID, uploadID)
	if err != nil {
		return "", err
	}
	url, err := a.objects.PresignGet(ctx, upload.FileURL, a.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}
	return url, nil
}

// AnalyzeUpload runs vision analysis for one uploaded photo.
func (a *App) AnalyzeUpload(ctx context.Context, userID, uploadID string) (map[string]any, error) {
	if _, err := a.ownedUpload(userID, uploadID); err != nil {
		return nil, err
	}
	result, err := a.analyzer.AnalyzeUpload(ctx, uploadID)
	if err != nil {
		if errors.Is(err, analysis.ErrNotImage) {
			return nil, unsupportedf("只有图片可以进行 AI 解读")
		}
		return nil, remotef("图片解读失败: %v", err)
	}
	return result, nil
}

// AnalyzeProjectImages analyzes every pending photo of a project.
func (a *App) AnalyzeProjectImages(ctx context.Context, userID, projectID string) (analysis.Result, error) {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return analysis.Result{}, err
	}
	return a.analyzer.AnalyzeProjectImages(ctx, projectID)
}

func (a *App) ownedUpload(userID, uploadID string) (domain.Upload, error) {
	upload, ok, err := a.store.GetUpload(uploadID)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("load upload: %w", err)
	}
	if !ok {
		return domain.Upload{}, notFoundf("文件 %s 不存在", uploadID)
	}
	if _, err := a.ownedProject(userID, upload.ProjectID); err != nil {
		return domain.Upload{}, err
	}
	return upload, nil
}
