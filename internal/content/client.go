// Package content is a client for the upstream question catalogue. All
// endpoints answer with the envelope {success, statusCode, message, data}.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/mindengage-sheets/internal/sheet"
)

// ErrAPI marks a request the upstream answered with success=false.
var ErrAPI = errors.New("content api error")

// ErrNotFound is returned for a 404 from the upstream.
var ErrNotFound = errors.New("content not found")

// Node is one level of the catalogue taxonomy (board, exam, subject,
// chapter group, chapter).
type Node struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	Order          int    `json:"order"`
	IsActive       bool   `json:"isActive"`
	BoardID        string `json:"boardId,omitempty"`
	ExamID         string `json:"examId,omitempty"`
	SubjectID      string `json:"subjectId,omitempty"`
	ChapterGroupID string `json:"chapterGroupId,omitempty"`
}

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	// MaxParallel bounds concurrent requests of multi-chapter fetches.
	MaxParallel int
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		HTTP:        &http.Client{Timeout: timeout},
		BaseURL:     strings.TrimRight(baseURL, "/"),
		MaxParallel: 4,
	}
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if resp.StatusCode/100 != 2 {
		return httpErr(op, resp)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode envelope: %w", op, err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request failed"
		}
		return fmt.Errorf("%s: %w: %s", op, ErrAPI, msg)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", op, err)
	}
	return nil
}

func httpErr(op string, resp *http.Response) error {
	return fmt.Errorf("%s: upstream returned %s", op, resp.Status)
}

// QuestionsByChapter returns the active questions of a chapter in upstream order.
func (c *Client) QuestionsByChapter(ctx context.Context, chapterID string) ([]sheet.Question, error) {
	if chapterID == "" {
		return nil, errors.New("chapterID required")
	}
	var qs []sheet.Question
	if err := c.get(ctx, "questions by chapter", "/api/v1/questions", url.Values{"chapterId": {chapterID}}, &qs); err != nil {
		return nil, err
	}
	return activeQuestions(qs), nil
}

// Question fetches a single question by id.
func (c *Client) Question(ctx context.Context, id string) (sheet.Question, error) {
	var q sheet.Question
	if id == "" {
		return q, errors.New("question id required")
	}
	err := c.get(ctx, "get question", "/api/v1/questions/"+url.PathEscape(id), nil, &q)
	return q, err
}

// QuestionsByChapters fetches several chapters concurrently and concatenates
// their questions in the order the chapters were given. Any failure cancels
// the remaining requests.
func (c *Client) QuestionsByChapters(ctx context.Context, chapterIDs []string) ([]sheet.Question, error) {
	results := make([][]sheet.Question, len(chapterIDs))
	g, gctx := errgroup.WithContext(ctx)
	if c.MaxParallel > 0 {
		g.SetLimit(c.MaxParallel)
	}
	for i, id := range chapterIDs {
		i, id := i, id
		g.Go(func() error {
			qs, err := c.QuestionsByChapter(gctx, id)
			if err != nil {
				return fmt.Errorf("chapter %s: %w", id, err)
			}
			results[i] = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []sheet.Question
	for _, qs := range results {
		out = append(out, qs...)
	}
	return out, nil
}

// Questions fetches questions by id concurrently, preserving the given order.
func (c *Client) Questions(ctx context.Context, ids []string) ([]sheet.Question, error) {
	out := make([]sheet.Question, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	if c.MaxParallel > 0 {
		g.SetLimit(c.MaxParallel)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			q, err := c.Question(gctx, id)
			if err != nil {
				return err
			}
			out[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Boards(ctx context.Context) ([]Node, error) {
	return c.nodes(ctx, "list boards", "/api/v1/boards", nil)
}

func (c *Client) ExamsByBoard(ctx context.Context, boardID string) ([]Node, error) {
	return c.nodes(ctx, "exams by board", "/api/v1/exams", url.Values{"boardId": {boardID}})
}

func (c *Client) SubjectsByExam(ctx context.Context, examID string) ([]Node, error) {
	return c.nodes(ctx, "subjects by exam", "/api/v1/subjects", url.Values{"examId": {examID}})
}

func (c *Client) ChapterGroupsBySubject(ctx context.Context, subjectID string) ([]Node, error) {
	return c.nodes(ctx, "chapter groups by subject", "/api/v1/chapter-groups", url.Values{"subjectId": {subjectID}})
}

func (c *Client) ChaptersByChapterGroup(ctx context.Context, chapterGroupID string) ([]Node, error) {
	return c.nodes(ctx, "chapters by chapter group", "/api/v1/chapters", url.Values{"chapterGroupId": {chapterGroupID}})
}

// nodes lists a taxonomy level, keeping active entries sorted by order.
func (c *Client) nodes(ctx context.Context, op, path string, q url.Values) ([]Node, error) {
	var all []Node
	if err := c.get(ctx, op, path, q, &all); err != nil {
		return nil, err
	}
	out := all[:0]
	for _, n := range all {
		if n.IsActive {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func activeQuestions(qs []sheet.Question) []sheet.Question {
	out := qs[:0]
	for _, q := range qs {
		if q.Active() {
			out = append(out, q)
		}
	}
	return out
}
