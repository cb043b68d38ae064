package page

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"gowiki/internal/models"
)

// ErrServiceClosed is returned for calls made after the service was closed.
var ErrServiceClosed = errors.New("page service closed")

type operation int

const (
	opFetchAllPages operation = iota
	opFetchAllPagesData
	opFetchPage
	opCreatePage
	opSavePage
	opDeletePage
)

var operationNames = [...]string{
	opFetchAllPages:     "fetchAllPages",
	opFetchAllPagesData: "fetchAllPagesData",
	opFetchPage:         "fetchPage",
	opCreatePage:        "createPage",
	opSavePage:          "savePage",
	opDeletePage:        "deletePage",
}

func (o operation) String() string {
	return operationNames[o]
}

// request is one call sent to the service. reply is buffered so the service
// never blocks on a caller that stopped waiting.
type request struct {
	ctx      context.Context
	callID   string
	op       operation
	name     string
	id       int64
	markdown string
	reply    chan response
}

type response struct {
	names []string
	data  []models.PageData
	page  models.PageLookup
	err   error
}

// Service owns all page storage. It receives calls on its request channel and
// runs each of them against the repository on its own goroutine, so calls
// interleave only at the connection pool.
type Service struct {
	repo     *Repository
	log      logrus.FieldLogger
	requests chan request
	done     chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Start prepares the schema and then begins serving calls. If the schema
// cannot be prepared no service is returned.
func Start(ctx context.Context, repo *Repository, log logrus.FieldLogger) (*Service, error) {
	if err := repo.PrepareSchema(ctx); err != nil {
		log.WithError(err).Error("database preparation error")
		return nil, errors.Wrap(err, "start page service")
	}

	s := &Service{
		repo:     repo,
		log:      log,
		requests: make(chan request),
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.loop()

	log.Info("page service ready")
	return s, nil
}

func (s *Service) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requests:
			s.wg.Add(1)
			go s.handle(req)
		}
	}
}

func (s *Service) handle(req request) {
	defer s.wg.Done()

	resp := s.dispatch(req)
	if resp.err != nil {
		s.log.WithFields(logrus.Fields{
			"op":   req.op.String(),
			"call": req.callID,
		}).WithError(resp.err).Error("database query error")
	}
	req.reply <- resp
}

func (s *Service) dispatch(req request) response {
	var resp response
	switch req.op {
	case opFetchAllPages:
		resp.names, resp.err = s.repo.ListNames(req.ctx)
	case opFetchAllPagesData:
		resp.data, resp.err = s.repo.ListData(req.ctx)
	case opFetchPage:
		resp.page, resp.err = s.repo.FindByName(req.ctx, req.name)
	case opCreatePage:
		resp.err = s.repo.Create(req.ctx, req.name, req.markdown)
	case opSavePage:
		resp.err = s.repo.UpdateContent(req.ctx, req.id, req.markdown)
	case opDeletePage:
		resp.err = s.repo.Delete(req.ctx, req.id)
	default:
		resp.err = errors.Errorf("unknown operation %d", req.op)
	}
	return resp
}

// Client returns a proxy that sends calls to the service.
func (s *Service) Client() *Client {
	return &Client{requests: s.requests, done: s.done}
}

// Close stops accepting calls and waits for in-flight calls to finish.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
}

// Client is the caller side of the service. It is safe for concurrent use and
// holds no connection of its own.
type Client struct {
	requests chan<- request
	done     <-chan struct{}
}

func (c *Client) call(ctx context.Context, req request) (response, error) {
	req.ctx = ctx
	req.callID = uuid.NewString()
	req.reply = make(chan response, 1)

	select {
	case c.requests <- req:
	case <-c.done:
		return response{}, ErrServiceClosed
	case <-ctx.Done():
		return response{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp, resp.err
	case <-ctx.Done():
		return response{}, ctx.Err()
	}
}

// FetchAllPages returns every page name in lexicographic order.
func (c *Client) FetchAllPages(ctx context.Context) ([]string, error) {
	resp, err := c.call(ctx, request{op: opFetchAllPages})
	return resp.names, err
}

// FetchAllPagesData returns the name and content of every page.
func (c *Client) FetchAllPagesData(ctx context.Context) ([]models.PageData, error) {
	resp, err := c.call(ctx, request{op: opFetchAllPagesData})
	return resp.data, err
}

// FetchPage looks a page up by name.
func (c *Client) FetchPage(ctx context.Context, name string) (models.PageLookup, error) {
	resp, err := c.call(ctx, request{op: opFetchPage, name: name})
	return resp.page, err
}

// CreatePage stores a new page.
func (c *Client) CreatePage(ctx context.Context, title, markdown string) error {
	_, err := c.call(ctx, request{op: opCreatePage, name: title, markdown: markdown})
	return err
}

// SavePage replaces the content of an existing page.
func (c *Client) SavePage(ctx context.Context, id int64, markdown string) error {
	_, err := c.call(ctx, request{op: opSavePage, id: id, markdown: markdown})
	return err
}

// DeletePage removes a page.
func (c *Client) DeletePage(ctx context.Context, id int64) error {
	_, err := c.call(ctx, request{op: opDeletePage, id: id})
	return err
}
