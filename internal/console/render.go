package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/go-faster/errors"

	"github.com/xenking/catalog-view/internal/domain/product"
	"github.com/xenking/catalog-view/internal/ui"
	"github.com/xenking/catalog-view/internal/view"
)

// Render writes st as a text table: header with the current controls,
// one row per displayed product, then the pager.
func Render(w io.Writer, st view.State, l ui.Labels) error {
	var b strings.Builder

	fmt.Fprintf(&b, "== %s ==\n", l.Title)
	fmt.Fprintf(&b, "%s: %q | %s | %s\n",
		l.SearchPlaceholder, st.Search, sortLabel(l, st.Sort), l.PageSizeLabel(st.PageSize))

	switch {
	case st.Status == view.StatusIdle:
		b.WriteString("...\n")
	case st.Status == view.StatusNetworkError:
		fmt.Fprintf(&b, "%s. %s: reload\n", l.NetworkError, l.Retry)
	case st.Status == view.StatusDecodeError:
		fmt.Fprintf(&b, "%s\n", l.DecodeError)
	case st.NoResults():
		fmt.Fprintf(&b, "%s\n", l.NoResults)
	default:
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tTHUMBNAIL")
		for _, p := range st.Displayed {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Title, ui.Price(p.Price), p.Thumbnail)
		}
		if err := tw.Flush(); err != nil {
			return errors.Wrap(err, "flush table")
		}
	}

	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		control(l.Prev, st.HasPrev()),
		ui.PageIndicator(st.Page, st.TotalPages),
		control(l.Next, st.HasNext()),
	)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "write")
	}
	return nil
}

func sortLabel(l ui.Labels, m product.SortMode) string {
	if m == product.SortDefault {
		return l.SortDefault
	}
	return l.SortDefault + ": " + l.SortLabel(m)
}

// control renders a pager button; disabled ones are bracketed with dashes.
func control(label string, enabled bool) string {
	if enabled {
		return "[" + label + "]"
	}
	return "[-" + label + "-]"
}
