package plex

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cratekeeper/internal/config"
	"cratekeeper/internal/reconcile"
	"cratekeeper/internal/services"
)

const userAgent = "Cratekeeper-Go/0.1.0"

// plexTrackType is the Plex media type filter for individual tracks.
const plexTrackType = "10"

// Client exports track lists from a Plex music library for reconciliation
// against a collection.
type Client struct {
	baseURL string
	token   string
	library string
	client  *http.Client
	limiter *rate.Limiter

	mu       sync.Mutex
	sections map[string]string
}

// Configured reports whether the configuration carries enough Plex settings
// to build a client.
func Configured(cfg *config.Config) bool {
	return strings.TrimSpace(cfg.Plex.URL) != "" && strings.TrimSpace(cfg.Plex.Token) != ""
}

// NewClient builds a Plex client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if !Configured(cfg) {
		return nil, services.Wrap(services.ErrValidation, "plex", "new client",
			"plex url and token must be configured", nil)
	}

	timeout := time.Duration(cfg.Plex.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.Plex.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.Plex.RequestsPerSec)
	}
	library := strings.TrimSpace(cfg.Plex.MusicLibrary)
	if library == "" {
		library = "Music"
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.Plex.URL), "/"),
		token:   strings.TrimSpace(cfg.Plex.Token),
		library: library,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// ListTracks fetches every track in the configured music library.
func (c *Client) ListTracks(ctx context.Context) ([]reconcile.Track, error) {
	sections, err := c.ensureSections(ctx)
	if err != nil {
		return nil, err
	}
	key, ok := sections[strings.ToLower(c.library)]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "plex", "list tracks",
			fmt.Sprintf("plex library %q", c.library), nil)
	}

	tracksURL := fmt.Sprintf("%s/library/sections/%s/all?type=%s", c.baseURL, key, plexTrackType)
	body, err := c.get(ctx, tracksURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	type plexTrack struct {
		RatingKey   string `xml:"ratingKey,attr"`
		Title       string `xml:"title,attr"`
		Artist      string `xml:"grandparentTitle,attr"`
		Album       string `xml:"parentTitle,attr"`
		TrackArtist string `xml:"originalTitle,attr"`
	}
	type mediaContainer struct {
		Tracks []plexTrack `xml:"Track"`
	}

	var container mediaContainer
	if err := xml.NewDecoder(body).Decode(&container); err != nil {
		return nil, services.Wrap(services.ErrExternal, "plex", "list tracks",
			"decode plex track listing", err)
	}

	tracks := make([]reconcile.Track, 0, len(container.Tracks))
	for _, track := range container.Tracks {
		artist := track.Artist
		// Plex stores per-track artists in originalTitle when they differ
		// from the album artist.
		if strings.TrimSpace(track.TrackArtist) != "" {
			artist = track.TrackArtist
		}
		tracks = append(tracks, reconcile.Track{
			ID:     track.RatingKey,
			Title:  track.Title,
			Artist: artist,
			Album:  track.Album,
		})
	}
	return tracks, nil
}

func (c *Client) ensureSections(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sections != nil {
		return c.sections, nil
	}

	body, err := c.get(ctx, c.baseURL+"/library/sections")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	type directory struct {
		Key   string `xml:"key,attr"`
		Title string `xml:"title,attr"`
		Type  string `xml:"type,attr"`
	}
	type mediaContainer struct {
		Directories []directory `xml:"Directory"`
	}

	var container mediaContainer
	if err := xml.NewDecoder(body).Decode(&container); err != nil {
		return nil, services.Wrap(services.ErrExternal, "plex", "sections",
			"decode plex sections", err)
	}

	sections := make(map[string]string, len(container.Directories))
	for _, dir := range container.Directories {
		if dir.Key == "" || dir.Title == "" {
			continue
		}
		sections[strings.ToLower(dir.Title)] = dir.Key
	}
	c.sections = sections
	return sections, nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build plex request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "plex", "request", url, err)
	}
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, services.Wrap(services.ErrExternal, "plex", "request",
			fmt.Sprintf("plex returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}
	return resp.Body, nil
}
