package lookup

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/internal/domain/ranking"
	"github.com/okian/safeeats/internal/domain/rating"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderResults(w io.Writer, view ranking.View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBOROUGH\tCUISINE\tGRADE\tSCORE\tSTARS")
	for i := range view.Results {
		r := &view.Results[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, dash(r.Borough), dash(r.CuisineDescription),
			dash(r.Grade()), score(r), stars(r.Stars()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d of %d results, sorted by %s\n", len(view.Results), view.Total, view.Sort)
	return err
}

func renderDetail(w io.Writer, d *model.Detail) error {
	fmt.Fprintf(w, "%s (%s)\n", d.Name, d.ID)
	if addr := strings.TrimSpace(strings.Join([]string{d.Address, d.Borough, d.Zipcode}, " ")); addr != "" {
		fmt.Fprintln(w, addr)
	}
	if d.CuisineDescription != "" {
		fmt.Fprintln(w, d.CuisineDescription)
	}
	fmt.Fprintf(w, "Rating: %s\n\n", stars(d.Stars()))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tGRADE\tSCORE\tCRITICAL\tSUMMARY")
	for _, in := range d.Inspections {
		s := "-"
		if v, ok := in.Score.Get(); ok {
			s = strconv.Itoa(v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			dash(in.Date), dash(in.Grade), s, dash(in.CriticalFlag), dash(in.Summary))
	}
	return tw.Flush()
}

func score(r *model.Restaurant) string {
	if v, ok := r.Score(); ok {
		return strconv.Itoa(v)
	}
	return "-"
}

func stars(n int) string {
	return strings.Repeat("*", n) + strings.Repeat(".", rating.MaxStars-n)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
