package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/mgetnet/faydagen/internal/errors"
)

// Config holds OCR.Space client settings.
type Config struct {
	APIKey   string
	Endpoint string
	Language string
	Engine   int
	Timeout  time.Duration
}

// SpaceClient calls the OCR.Space parse API with a base64-encoded image.
type SpaceClient struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

func NewSpaceClient(cfg Config, logger *zap.Logger) *SpaceClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.ocr.space/parse/image"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Engine == 0 {
		cfg.Engine = 2
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &SpaceClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type spaceResponse struct {
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
	ParsedResults         []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
}

// Text uploads the image and returns the concatenated parsed text. A
// successful call with no recognizable text returns "".
func (c *SpaceClient) Text(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrImageNotFound.Code, "cannot read image for OCR")
	}

	form := url.Values{}
	form.Set("base64Image", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data))
	form.Set("language", c.cfg.Language)
	form.Set("isOverlayRequired", "false")
	form.Set("OCREngine", strconv.Itoa(c.cfg.Engine))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrOCRUnavailable.Code, "building OCR request")
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrOCRUnavailable.Code, "OCR request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.New(apperrors.ErrOCRUnavailable.Code,
			fmt.Sprintf("OCR service returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrOCRUnavailable.Code, "reading OCR response")
	}

	var parsed spaceResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrOCRUnavailable.Code, "decoding OCR response")
	}

	if parsed.IsErroredOnProcessing {
		// ErrorMessage arrives as either a string or an array of strings.
		c.logger.Warn("OCR service rejected image",
			zap.String("detail", string(parsed.ErrorMessage)))
		return "", apperrors.New(apperrors.ErrOCRRejected.Code, "OCR service rejected image")
	}

	var sb strings.Builder
	for _, result := range parsed.ParsedResults {
		sb.WriteString(result.ParsedText)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	c.logger.Debug("OCR completed", zap.String("image", imagePath), zap.Int("chars", len(text)))
	return text, nil
}
