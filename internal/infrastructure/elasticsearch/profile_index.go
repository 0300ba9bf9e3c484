package elasticsearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/craftfolio/craftfolio-api/internal/domain/entity"
	"github.com/craftfolio/craftfolio-api/internal/domain/repository"
)

// NewClient creates an Elasticsearch client with sane defaults and optional basic auth.
func NewClient(addrs []string, username, password string) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  username,
		Password:  password,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	}
	return elasticsearch.NewClient(cfg)
}

// ProfileIndex keeps a searchable copy of profile display fields for admin
// search. The document store stays the source of truth; search returns ids
// and the caller re-reads the documents.
type ProfileIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewProfileIndex(es *elasticsearch.Client, index string) *ProfileIndex {
	return &ProfileIndex{es: es, index: index}
}

type profileDoc struct {
	Username   string `json:"username"`
	FriendlyID string `json:"friendly_id"`
	Bio        string `json:"bio"`
	Profession string `json:"profession"`
	Active     bool   `json:"active"`
}

func (i *ProfileIndex) Index(ctx context.Context, p *entity.Profile) error {
	body, err := json.Marshal(profileDoc{
		Username:   p.Username,
		FriendlyID: p.FriendlyID,
		Bio:        p.Bio,
		Profession: p.Profession,
		Active:     p.Active,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: p.ID.Hex(),
		Body:       strings.NewReader(string(body)),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.String())
	}
	return nil
}

func (i *ProfileIndex) Search(ctx context.Context, query string, page, limit int) ([]primitive.ObjectID, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	var body strings.Builder
	if err := json.NewEncoder(&body).Encode(map[string]any{
		"from": (page - 1) * limit,
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"username^2", "friendly_id", "bio", "profession"},
			},
		},
	}); err != nil {
		return nil, 0, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(strings.NewReader(body.String())),
	)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, fmt.Errorf("es search: %s", res.String())
	}

	var out struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, err
	}

	ids := make([]primitive.ObjectID, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		oid, err := primitive.ObjectIDFromHex(h.ID)
		if err != nil {
			continue // stale doc with a foreign id, skip
		}
		ids = append(ids, oid)
	}
	return ids, out.Hits.Total.Value, nil
}

func (i *ProfileIndex) Remove(ctx context.Context, id primitive.ObjectID) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: id.Hex()}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// 404 means the doc was never indexed; nothing to do.
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.String())
	}
	return nil
}

var _ repository.ProfileIndex = (*ProfileIndex)(nil)
