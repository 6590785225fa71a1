package gist

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/unkn0wn-root/playterm/internal/errdef"
	"github.com/unkn0wn-root/playterm/internal/transport"
)

const (
	DefaultAPIURL = "https://api.github.com"
	FileName      = "playground.rs"
	Description   = "Rust code shared from the playground"
)

// Gist is the snippet record exchanged with the UI.
type Gist struct {
	ID   string
	URL  string
	Code string
}

type poster interface {
	Post(ctx context.Context, route string, body any, out any) error
	Get(ctx context.Context, route string, out any) error
}

// Client loads and saves snippets through the GitHub gists API.
type Client struct {
	api poster
}

func NewClient(api *transport.Client) *Client {
	return &Client{api: api}
}

// NewAPIClient builds the transport for the gists API. The token is optional;
// anonymous requests are subject to GitHub's rate limits.
func NewAPIClient(apiURL, token, userAgent string, opts transport.Options) (*transport.Client, error) {
	if strings.TrimSpace(apiURL) == "" {
		apiURL = DefaultAPIURL
	}
	opts.BaseURL = apiURL
	opts.UserAgent = userAgent
	headers := map[string]string{"Accept": "application/vnd.github+json"}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if token = strings.TrimSpace(token); token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	opts.Headers = headers
	return transport.NewClient(opts)
}

type gistFile struct {
	Filename string `json:"filename,omitempty"`
	Content  string `json:"content"`
}

type gistReply struct {
	ID      string              `json:"id"`
	HTMLURL string              `json:"html_url"`
	Files   map[string]gistFile `json:"files"`
}

type createRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

func (c *Client) Load(ctx context.Context, id string) (Gist, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Gist{}, errdef.New(errdef.CodeGist, "gist id is required")
	}
	var reply gistReply
	if err := c.api.Get(ctx, "/gists/"+url.PathEscape(id), &reply); err != nil {
		return Gist{}, err
	}
	return Gist{ID: reply.ID, URL: reply.HTMLURL, Code: pickCode(reply.Files)}, nil
}

func (c *Client) Save(ctx context.Context, code string) (Gist, error) {
	body := createRequest{
		Description: Description,
		Public:      true,
		Files:       map[string]gistFile{FileName: {Content: code}},
	}
	var reply gistReply
	if err := c.api.Post(ctx, "/gists", body, &reply); err != nil {
		return Gist{}, err
	}
	if reply.ID == "" {
		return Gist{}, errdef.New(errdef.CodeGist, "gist response had no id")
	}
	return Gist{ID: reply.ID, URL: reply.HTMLURL, Code: code}, nil
}

// pickCode prefers playground.rs and otherwise takes the first file by name.
func pickCode(files map[string]gistFile) string {
	if f, ok := files[FileName]; ok {
		return f.Content
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return files[names[0]].Content
}

// Permalink links back into the playground with the gist preloaded.
func Permalink(playgroundURL, id string) string {
	base := strings.TrimRight(strings.TrimSpace(playgroundURL), "/")
	return base + "/?gist=" + url.QueryEscape(id)
}
