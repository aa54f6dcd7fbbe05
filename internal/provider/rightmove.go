package provider

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reno-works/listings-cli/internal/fetcher"
	"github.com/reno-works/listings-cli/internal/model"
)

const rightmoveBaseURL = "https://www.rightmove.co.uk"

// Rightmove scrapes the Rightmove for-sale results page.
type Rightmove struct {
	fetcher fetcher.Fetcher
	geo     Geocoder
	opts    Options
}

// NewRightmove creates the Rightmove adapter.
func NewRightmove(f fetcher.Fetcher, geo Geocoder, opts Options) *Rightmove {
	if opts.BaseURL == "" {
		opts.BaseURL = rightmoveBaseURL
	}
	return &Rightmove{fetcher: f, geo: geo, opts: opts}
}

func (p *Rightmove) Name() string { return "rightmove" }

func (p *Rightmove) Source() model.Source { return model.SourceRightmove }

// Fetch downloads the search results page and parses each property card.
// Cards missing a deep link are skipped; the rest of the page is kept.
func (p *Rightmove) Fetch(ctx context.Context, q model.Query) ([]model.Record, error) {
	log := zap.L().With(zap.String("provider", p.Name()))

	params := map[string]string{
		"searchLocation": q.Location,
		"radius":         strconv.Itoa(q.RadiusMiles),
		"maxPrice":       strconv.FormatInt(q.MaxPrice, 10),
		"keywords":       strings.Join(q.Keywords, " OR "),
		"propertyTypes":  strings.Join(q.PropertyTypes, ","),
		"includeSSTC":    "false",
		"index":          "0",
	}

	body, err := p.fetcher.DownloadWithParams(ctx, p.opts.BaseURL+"/property-for-sale/find.html", params)
	if err != nil {
		return nil, eris.Wrap(err, "rightmove: fetch results page")
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "rightmove: parse html")
	}

	var records []model.Record
	cards := doc.Find("div.propertyCard")
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		rec := model.Record{
			"title":       strings.TrimSpace(card.Find("h2").First().Text()),
			"price":       strings.TrimSpace(card.Find("div.propertyCard-priceValue").First().Text()),
			"address":     strings.TrimSpace(card.Find("address").First().Text()),
			"description": strings.TrimSpace(card.Find("span.propertyCard-title").First().Text()),
		}
		if href, ok := card.Find("a[href]").First().Attr("href"); ok {
			rec["url"] = absURL(p.opts.BaseURL, href)
		}
		if src, ok := card.Find("img").First().Attr("src"); ok {
			rec["image_url"] = strings.TrimSpace(src)
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
		return records, eris.Wrap(err, "rightmove: cancelled")
	}

	log.Info("parsed listings", zap.Int("count", len(records)))
	return records, nil
}
