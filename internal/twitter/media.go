package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

const (
	uploadPhaseTimeout = 30 * time.Second
	statusPollTimeout  = 10 * time.Second
	maxPollInterval    = 2 * time.Second
)

// reencodeToJPEG перекодирует изображение во временный JPEG.
// Прозрачность сводится на белый фон. Возвращает путь временного файла;
// за его удаление отвечает вызывающая сторона.
func reencodeToJPEG(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", path, err)
	}

	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	flattened := imaging.Overlay(background, img, image.Pt(0, 0), 1.0)

	tmp, err := os.CreateTemp("", "crosspost-*.jpg")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := imaging.Save(flattened, tmpPath, imaging.JPEGQuality(90)); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("encode jpeg: %w", err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("converted jpeg is empty")
	}
	return tmpPath, nil
}

type mediaInitResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type processingInfo struct {
	State          string `json:"state"`
	CheckAfterSecs int    `json:"check_after_secs"`
}

type mediaFinalizeResponse struct {
	Data struct {
		ID             string          `json:"id"`
		ProcessingInfo *processingInfo `json:"processing_info"`
	} `json:"data"`
}

// UploadMedia загружает изображение трёхфазным протоколом
// initialize → append → finalize и при необходимости дожидается
// окончания обработки на стороне API. Возвращает media_id для вложения.
func (c *Client) UploadMedia(ctx context.Context, path string) (string, error) {
	client, err := c.httpClient(ctx)
	if err != nil {
		return "", err
	}

	tmpPath, err := reencodeToJPEG(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	info, err := os.Stat(tmpPath)
	if err != nil {
		return "", fmt.Errorf("stat temp file: %w", err)
	}

	mediaID, err := c.mediaInitialize(ctx, client, info.Size())
	if err != nil {
		return "", err
	}
	if err := c.mediaAppend(ctx, client, mediaID, tmpPath); err != nil {
		return "", err
	}
	proc, err := c.mediaFinalize(ctx, client, mediaID)
	if err != nil {
		return "", err
	}
	if proc != nil {
		if err := c.waitProcessing(ctx, client, mediaID, proc); err != nil {
			return "", err
		}
	}

	c.log.Info("media uploaded", slog.String("media_id", mediaID))
	return mediaID, nil
}

func (c *Client) mediaInitialize(ctx context.Context, client *http.Client, totalBytes int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadPhaseTimeout)
	defer cancel()

	payload := map[string]any{
		"media_type":     "image/jpeg",
		"total_bytes":    totalBytes,
		"media_category": "tweet_image",
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode init payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mediaInitURL, &buf)
	if err != nil {
		return "", fmt.Errorf("build init request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("media initialize: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		return "", &PostError{Operation: "media initialize", StatusCode: resp.StatusCode, Body: string(body)}
	}
	var result mediaInitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode init response: %w", err)
	}
	if result.Data.ID == "" {
		return "", fmt.Errorf("media initialize returned empty id")
	}
	return result.Data.ID, nil
}

func (c *Client) mediaAppend(ctx context.Context, client *http.Client, mediaID, filePath string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadPhaseTimeout)
	defer cancel()

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open media file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("media", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy media body: %w", err)
	}
	if err := writer.WriteField("segment_index", "0"); err != nil {
		return fmt.Errorf("write segment index: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf(c.mediaAppendTmpl, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("build append request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("media append: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &PostError{Operation: "media append", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

func (c *Client) mediaFinalize(ctx context.Context, client *http.Client, mediaID string) (*processingInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, uploadPhaseTimeout)
	defer cancel()

	url := fmt.Sprintf(c.mediaFinalizeTmp, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build finalize request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media finalize: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		return nil, &PostError{Operation: "media finalize", StatusCode: resp.StatusCode, Body: string(body)}
	}
	var result mediaFinalizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode finalize response: %w", err)
	}
	return result.Data.ProcessingInfo, nil
}

// waitProcessing опрашивает STATUS, пока обработка не завершится
// или не истечёт общий дедлайн загрузки.
func (c *Client) waitProcessing(ctx context.Context, client *http.Client, mediaID string, proc *processingInfo) error {
	deadline := time.Now().Add(uploadPhaseTimeout)

	for {
		switch proc.State {
		case "succeeded":
			return nil
		case "failed":
			return fmt.Errorf("media processing failed")
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("media processing timed out")
		}

		interval := time.Duration(proc.CheckAfterSecs) * time.Second
		if interval <= 0 || interval > maxPollInterval {
			interval = maxPollInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		next, err := c.mediaStatus(ctx, client, mediaID)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		proc = next
	}
}

func (c *Client) mediaStatus(ctx context.Context, client *http.Client, mediaID string) (*processingInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, statusPollTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.mediaStatusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	q := req.URL.Query()
	q.Set("command", "STATUS")
	q.Set("media_id", mediaID)
	req.URL.RawQuery = q.Encode()

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media status: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode/100 != 2 {
		return nil, &PostError{Operation: "media status", StatusCode: resp.StatusCode, Body: string(body)}
	}
	var result mediaFinalizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return result.Data.ProcessingInfo, nil
}
