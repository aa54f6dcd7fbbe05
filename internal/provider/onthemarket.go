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

const onTheMarketBaseURL = "https://www.onthemarket.com"

// OnTheMarket scrapes the OnTheMarket for-sale listings page for a location.
type OnTheMarket struct {
	fetcher fetcher.Fetcher
	geo     Geocoder
	opts    Options
}

// NewOnTheMarket creates the OnTheMarket adapter.
func NewOnTheMarket(f fetcher.Fetcher, geo Geocoder, opts Options) *OnTheMarket {
	if opts.BaseURL == "" {
		opts.BaseURL = onTheMarketBaseURL
	}
	return &OnTheMarket{fetcher: f, geo: geo, opts: opts}
}

func (p *OnTheMarket) Name() string { return "onthemarket" }

func (p *OnTheMarket) Source() model.Source { return model.SourceOnTheMarket }

// Fetch downloads the location listings page and parses each result card.
func (p *OnTheMarket) Fetch(ctx context.Context, q model.Query) ([]model.Record, error) {
	log := zap.L().With(zap.String("provider", p.Name()))

	pageURL := p.opts.BaseURL + "/for-sale/property/" + slugify(q.Location) + "/"
	body, err := p.fetcher.Download(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrap(err, "onthemarket: fetch results page")
	}
	defer body.Close() //nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, eris.Wrap(err, "onthemarket: parse html")
	}

	var records []model.Record
	cards := doc.Find("li.listing")
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		rec := model.Record{
			"title":       strings.TrimSpace(card.Find("h2").First().Text()),
			"price":       strings.TrimSpace(card.Find("span.listingPrice").First().Text()),
			"address":     strings.TrimSpace(card.Find("span.listingAddress").First().Text()),
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
		return records, eris.Wrap(err, "onthemarket: cancelled")
	}

	log.Info("parsed listings", zap.Int("count", len(records)))
	return records, nil
}
