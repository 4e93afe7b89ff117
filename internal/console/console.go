// Package console drives a long-lived catalog view from line commands on a
// terminal. Fetches run in the background; a newer fetch supersedes an older
// one, and every settled fetch re-renders the view.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/catalog-view/internal/domain/product"
	"github.com/xenking/catalog-view/internal/ui"
	"github.com/xenking/catalog-view/internal/view"
)

// ErrUnknownCommand is reported for input that is not a command.
var ErrUnknownCommand = errors.New("unknown command")

const help = `commands:
  next | n              next page
  prev | p              previous page
  size N                page size (12, 24, 36), back to page 1
  search TEXT | / TEXT  filter the current page by title
  sort MODE             default, price-asc or price-desc
  reload | r            fetch the current page again
  help | ?              this help
  quit | q              exit
`

// Console renders one view and applies commands to it.
//
// Commands are applied in input order: each fetching command returns once
// its fetch is issued, so settings never reorder, while the fetches
// themselves overlap and a newer one supersedes the older.
type Console struct {
	view   *view.View
	labels ui.Labels
	lg     *zap.Logger

	outMu sync.Mutex
	out   io.Writer

	pending sync.WaitGroup
}

// New returns a Console over a view of fetcher starting at s, writing to
// out. A nil logger disables logging.
func New(fetcher product.Fetcher, s view.Settings, out io.Writer, lg *zap.Logger, labels ui.Labels) *Console {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Console{
		view:   view.New(issuingFetcher{fetcher}, s),
		labels: labels,
		lg:     lg,
		out:    out,
	}
}

// Run loads the first page, then executes commands read from in until quit,
// end of input or ctx cancellation. It waits for in-flight fetches before
// returning and, unless cancelled, renders the final state.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	c.fetch(ctx, c.view.Load)

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case line, ok := <-lines:
			if !ok {
				select {
				case err = <-scanErr:
				default:
				}
				break loop
			}
			quit, cmdErr := c.exec(ctx, line)
			if cmdErr != nil {
				c.printf("%v\n", cmdErr)
			}
			if quit {
				break loop
			}
		}
	}

	c.pending.Wait()
	if err == nil {
		c.render()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return errors.Wrap(err, "read commands")
}

// exec applies one command line. It reports whether the console should
// stop.
func (c *Console) exec(ctx context.Context, line string) (quit bool, _ error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "":
	case "quit", "q", "exit":
		return true, nil
	case "next", "n":
		// Paging needs the page count of the fetch in flight.
		c.pending.Wait()
		c.fetch(ctx, c.view.NextPage)
	case "prev", "p":
		c.pending.Wait()
		c.fetch(ctx, c.view.PrevPage)
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil || !product.ValidPageSize(n) {
			return false, errors.Wrapf(view.ErrInvalidPageSize, "size %q", arg)
		}
		c.fetch(ctx, func(ctx context.Context) error {
			return c.view.SetPageSize(ctx, n)
		})
	case "search", "/":
		c.view.Search(arg)
		c.render()
	case "sort":
		c.view.SetSort(product.ParseSortMode(arg))
		c.render()
	case "reload", "r", "retry":
		c.fetch(ctx, c.view.Load)
	case "help", "?":
		c.printf("%s", help)
	default:
		return false, errors.Wrapf(ErrUnknownCommand, "%q, try help", name)
	}
	return false, nil
}

// State returns a snapshot of the view.
func (c *Console) State() view.State {
	return c.view.State()
}

// fetch runs a fetching transition in the background and renders once it
// settles. It returns when the transition has issued its fetch or finished
// without one. Superseded fetches are dropped silently.
func (c *Console) fetch(ctx context.Context, transition func(context.Context) error) {
	issued := make(chan struct{})
	done := make(chan struct{})
	ctx = context.WithValue(ctx, issuedKey{}, issued)

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		defer close(done)

		err := transition(ctx)
		switch {
		case errors.Is(err, view.ErrSuperseded), errors.Is(err, context.Canceled):
			return
		case err != nil:
			c.lg.Debug("Fetch failed", zap.Error(err))
		}
		c.render()
	}()

	select {
	case <-issued:
	case <-done:
	}
}

type issuedKey struct{}

// issuingFetcher reports through the context that a fetch was issued.
type issuingFetcher struct {
	product.Fetcher
}

func (f issuingFetcher) Fetch(ctx context.Context, req product.PageRequest) (*product.Page, error) {
	if ch, ok := ctx.Value(issuedKey{}).(chan struct{}); ok {
		close(ch)
	}
	return f.Fetcher.Fetch(ctx, req)
}

func (c *Console) render() {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	if err := Render(c.out, c.view.State(), c.labels); err != nil {
		c.lg.Warn("Render failed", zap.Error(err))
	}
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	_, _ = fmt.Fprintf(c.out, format, args...)
}
