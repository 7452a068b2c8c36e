package lavalink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jakobgrine/lavabot/internal/audio"
)

type trackPayload struct {
	Encoded string `json:"encoded"`
	Info    struct {
		Identifier string `json:"identifier"`
		Author     string `json:"author"`
		Length     int64  `json:"length"`
		IsStream   bool   `json:"isStream"`
		Title      string `json:"title"`
		URI        string `json:"uri"`
		ArtworkURL string `json:"artworkUrl"`
	} `json:"info"`
}

func (t *trackPayload) toInfo() audio.TrackInfo {
	return audio.TrackInfo{
		Encoded:    t.Encoded,
		Identifier: t.Info.Identifier,
		Title:      t.Info.Title,
		URI:        t.Info.URI,
		Author:     t.Info.Author,
		Duration:   t.Info.Length,
		ArtworkURL: t.Info.ArtworkURL,
		Stream:     t.Info.IsStream,
	}
}

type loadResponse struct {
	LoadType string          `json:"loadType"`
	Data     json.RawMessage `json:"data"`
}

type playlistPayload struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
	Tracks []trackPayload `json:"tracks"`
}

// Resolve asks the node to load tracks for the given identifier.
func (n *Node) Resolve(ctx context.Context, identifier string) (*audio.LoadResult, error) {
	path := "/loadtracks?identifier=" + url.QueryEscape(identifier)

	var resp loadResponse
	if err := n.rest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	res := &audio.LoadResult{Type: audio.LoadType(resp.LoadType)}

	switch res.Type {
	case audio.LoadTypeTrack:
		var t trackPayload
		if err := json.Unmarshal(resp.Data, &t); err != nil {
			return nil, fmt.Errorf("lavalink: decoding track: %w", err)
		}
		res.Tracks = []audio.TrackInfo{t.toInfo()}

	case audio.LoadTypeSearch:
		var ts []trackPayload
		if err := json.Unmarshal(resp.Data, &ts); err != nil {
			return nil, fmt.Errorf("lavalink: decoding search result: %w", err)
		}
		for _, t := range ts {
			res.Tracks = append(res.Tracks, t.toInfo())
		}

	case audio.LoadTypePlaylist:
		var pl playlistPayload
		if err := json.Unmarshal(resp.Data, &pl); err != nil {
			return nil, fmt.Errorf("lavalink: decoding playlist: %w", err)
		}
		res.PlaylistName = pl.Info.Name
		for _, t := range pl.Tracks {
			res.Tracks = append(res.Tracks, t.toInfo())
		}

	case audio.LoadTypeEmpty, audio.LoadTypeError:
		// nothing to decode

	default:
		return nil, fmt.Errorf("lavalink: unknown loadType %q", resp.LoadType)
	}

	return res, nil
}
