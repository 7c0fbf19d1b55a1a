package ytsubs

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/xybydy/go-ytsubs/types"
)

const msgMissingURL = "Параметр url обов'язковий"

var errMissingURL = errors.New("missing url parameter")

// handlerOptions are the parts of Options the transcript handlers need.
type handlerOptions struct {
	defaultLang          string
	strictVideoID        bool
	exposeUpstreamErrors bool
	handleEtag           bool
}

func createRootHandler(descriptor types.Descriptor, logger *zap.Logger) fiber.Handler {
	descriptorJSON, err := json.Marshal(descriptor)
	if err != nil {
		logger.Fatal("Couldn't marshal service descriptor", zap.Error(err))
	}
	return func(c fiber.Ctx) error {
		logger.Debug("createRootHandler called")
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(descriptorJSON)
	}
}

func createHealthHandler(logger *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		logger.Debug("createHealthHandler called")
		return c.JSON(types.HealthResponse{
			Status:  "ok",
			Message: "API працює",
		})
	}
}

func createSubtitlesHandler(fetcher *Fetcher, opts handlerOptions, logger *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		logger.Debug("createSubtitlesHandler called")

		videoID, err := videoIDFromQuery(c, opts.strictVideoID)
		if err != nil {
			return sendBadRequest(c, err)
		}
		lang := c.Query("lang", opts.defaultLang)

		text, err := fetcher.FetchText(c.Context(), videoID, lang)
		if err != nil {
			return sendFetchError(c, err, opts.exposeUpstreamErrors)
		}

		return send(c, []byte(text), fiber.MIMETextPlainCharsetUTF8, opts.handleEtag)
	}
}

func createInfoHandler(fetcher *Fetcher, opts handlerOptions, logger *zap.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		logger.Debug("createInfoHandler called")

		videoID, err := videoIDFromQuery(c, opts.strictVideoID)
		if err != nil {
			return sendBadRequest(c, err)
		}

		languages, err := fetcher.ListLanguages(c.Context(), videoID)
		if err != nil {
			return sendFetchError(c, err, opts.exposeUpstreamErrors)
		}

		resBody, err := json.Marshal(types.InfoResponse{
			VideoID:            videoID,
			AvailableLanguages: languages,
		})
		if err != nil {
			logger.Error("Couldn't marshal info response", zap.Error(err), zap.String("videoID", videoID))
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		return send(c, resBody, fiber.MIMEApplicationJSONCharsetUTF8, opts.handleEtag)
	}
}

// videoIDFromQuery extracts the video ID from the "url" query parameter.
// It returns errMissingURL if the parameter is missing and a KindBadRequest *FetchError
// if no ID could be extracted, or if strict is true and the ID is malformed.
func videoIDFromQuery(c fiber.Ctx, strict bool) (string, error) {
	rawURL := c.Query("url")
	if rawURL == "" {
		return "", errMissingURL
	}
	videoID := ExtractVideoID(rawURL)
	if videoID == "" || (strict && !IsValidVideoID(videoID)) {
		return "", &FetchError{Kind: KindBadRequest, VideoID: videoID}
	}
	return videoID, nil
}

func sendBadRequest(c fiber.Ctx, err error) error {
	if errors.Is(err, errMissingURL) {
		return c.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{Detail: msgMissingURL})
	}
	return sendFetchError(c, err, false)
}

func sendFetchError(c fiber.Ctx, err error, exposeUpstream bool) error {
	var fe *FetchError
	if !errors.As(err, &fe) {
		fe = &FetchError{Kind: KindUpstream, Err: err}
	}
	return c.Status(fe.Kind.StatusCode()).JSON(types.ErrorResponse{Detail: fe.Detail(exposeUpstream)})
}

// send sends the body with a 200 status code.
// With handleEtag the response gets an ETag header and a matching If-None-Match leads to a 304 without body.
func send(c fiber.Ctx, body []byte, contentType string, handleEtag bool) error {
	if handleEtag {
		etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
		c.Set(fiber.HeaderETag, etag)
		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}
