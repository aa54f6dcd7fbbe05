package provider

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reno-works/listings-cli/internal/fetcher"
	"github.com/reno-works/listings-cli/internal/model"
)

const zooplaBaseURL = "https://www.zoopla.co.uk"

// Zoopla scrapes the Zoopla for-sale listings page for a location.
// Zoopla's markup uses generated CSS-module class names; when they rotate
// the parser yields zero cards rather than failing.
type Zoopla struct {
	fetcher fetcher.Fetcher
	geo     Geocoder
	opts    Options
}

// NewZoopla creates the Zoopla adapter.
func NewZoopla(f fetcher.Fetcher, geo Geocoder, opts Options) *Zoopla {
	if opts.BaseURL == "" {
		opts.BaseURL = zooplaBaseURL
	}
	return &Zoopla{fetcher: f, geo: geo, opts: opts}
}

func (p *Zoopla) Name() string { return "zoopla" }

func (p *Zoopla) Source() model.Source { return model.SourceZoopla }

// Fetch downloads the location listings page and parses each result card.
func (p *Zoopla) Fetch(ctx context.Context, q model.Query) ([]model.Record, error) {
	log := zap.L().With(zap.String("provider", p.Name()))

	pageURL := p.opts.BaseURL + "/for-sale/property/" + slugify(q.Location) + "/"
	body, err := p.fetcher.Download(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "zoopla: fetch results page")
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "zoopla: parse html")
	}

	var records []model.Record
	cards := doc.Find("div.css-1itfubx-ListingsContainer")
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		rec := model.Record{
			"title":       strings.TrimSpace(card.Find("h2").First().Text()),
			"price":       strings.TrimSpace(card.Find("p.css-wpn2c1-Text").First().Text()),
			"address":     strings.TrimSpace(card.Find("p.css-1n7hynb-Text").First().Text()),
			"description": "",
		}
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			rec["url"] = absURL(p.opts.BaseURL, href)
		}

		if rec["url"] == "" {
			log.Debug("skipping card without link", zap.Int("index", i))
			return true
		}

		setLocation(rec, p.geo.Resolve(ctx, rec["address"]))
		records = append(records, rec)

		if i < cards.Length()-1 {
			sleep(ctx, p.opts.CardDelay)
		}
		return true
	})

	if err := ctx.Err(); err != nil {
		return records, eris.Wrap(err, "zoopla: cancelled")
	}

	log.Info("parsed listings", zap.Int("count", len(records)))
	return records, nil
}
