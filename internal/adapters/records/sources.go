package records

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lapedge/lapedge/internal/adapters/provider"
	"github.com/lapedge/lapedge/pkg/metrics"
)

const userAgent = "LapEdge/1.0 (Personal use)"

type lookupResponse struct {
	Skaters []lookupSkater `json:"skaters"`
}

type lookupSkater struct {
	GivenName  string         `json:"givenname"`
	FamilyName string         `json:"familyname"`
	Country    string         `json:"country"`
	Records    []lookupRecord `json:"records"`
}

type lookupRecord struct {
	Distance int               `json:"distance"`
	PB       provider.FlexTime `json:"pb"`
	SB       provider.FlexTime `json:"sb"`
	PBDate   string            `json:"pb_date"`
	SBDate   string            `json:"sb_date"`
}

// fromResultsAPI looks the skater up by family name in the JSON API
// and keeps the first match.
func (s *Service) fromResultsAPI(ctx context.Context, skaterID string, distance int) (SkaterRecords, error) {
	lookup := s.resultsBaseURL + "/skater_lookup.php?familyname=" + url.QueryEscape(skaterID)

	body, err := s.get(ctx, ProviderResults, lookup, "application/json")
	if err != nil {
		return SkaterRecords{}, err
	}

	var payload lookupResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.RecordUpstreamRequest(ProviderResults, "error")
		return SkaterRecords{}, err
	}
	metrics.RecordUpstreamRequest(ProviderResults, "ok")

	if len(payload.Skaters) == 0 {
		return SkaterRecords{}, ErrSkaterNotFound
	}

	sk := payload.Skaters[0]
	records := make(map[int]DistanceRecord)
	for _, rec := range sk.Records {
		if distance != 0 && rec.Distance != distance {
			continue
		}
		records[rec.Distance] = DistanceRecord{
			PR:         rec.PB.Seconds(),
			SeasonBest: rec.SB.Seconds(),
			PRDate:     rec.PBDate,
			SBDate:     rec.SBDate,
		}
	}

	return SkaterRecords{
		Name:    strings.TrimSpace(sk.GivenName + " " + sk.FamilyName),
		Country: sk.Country,
		Records: records,
	}, nil
}

// fromNewsSite scrapes the backup profile page. Rows are distance,
// personal best, season best; unparseable rows are skipped.
func (s *Service) fromNewsSite(ctx context.Context, skaterID string, distance int) (SkaterRecords, error) {
	page := s.newsBaseURL + "/data/skater/" + url.PathEscape(skaterID)

	body, err := s.get(ctx, ProviderNews, page, "text/html")
	if err != nil {
		return SkaterRecords{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		metrics.RecordUpstreamRequest(ProviderNews, "error")
		return SkaterRecords{}, err
	}
	metrics.RecordUpstreamRequest(ProviderNews, "ok")

	records := make(map[int]DistanceRecord)
	doc.Find("table.records tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		dist, err := strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil || (distance != 0 && dist != distance) {
			return
		}
		pr, _ := strconv.ParseFloat(strings.TrimSpace(cells.Eq(1).Text()), 64)
		sb, _ := strconv.ParseFloat(strings.TrimSpace(cells.Eq(2).Text()), 64)
		records[dist] = DistanceRecord{PR: pr, SeasonBest: sb}
	})

	name := strings.TrimSpace(doc.Find("h1.skater-name").Text())
	if name == "" {
		name = "Unknown"
	}
	country := strings.TrimSpace(doc.Find("span.country").Text())
	if country == "" {
		country = "UNK"
	}

	return SkaterRecords{Name: name, Country: country, Records: records}, nil
}

func (s *Service) get(ctx context.Context, providerName, target, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.RecordUpstreamLatency(providerName, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest(providerName, "error")
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamRequest(providerName, "http_error")
		return nil, &provider.StatusError{Code: resp.StatusCode, URL: target}
	}
	return io.ReadAll(resp.Body)
}
