package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/peermirror/internal/client/client"
	"github.com/dmitrijs2005/peermirror/internal/client/models"
	"github.com/dmitrijs2005/peermirror/internal/logging"
)

// QueryService refreshes the peer directory from the API.
type QueryService interface {
	// RefreshAll replaces the directory with the server's peer list.
	RefreshAll(ctx context.Context) Response[[]models.Peer]

	// FetchOne loads one peer and upserts it. Failures go to the sink only.
	FetchOne(ctx context.Context, id string) Response[*models.Peer]
}

type queryService struct {
	api  client.Client
	dir  Directory
	sink ErrorSink
	log  logging.Logger
}

func NewQueryService(api client.Client, dir Directory, sink ErrorSink, log logging.Logger) QueryService {
	if log == nil {
		log = logging.Nop()
	}
	return &queryService{api: api, dir: dir, sink: sink, log: log.With("module", "query")}
}

func (q *queryService) RefreshAll(ctx context.Context) Response[[]models.Peer] {
	peers, err := q.api.GetPeers(ctx)
	if err != nil {
		q.fail(ctx, "refresh peers", err)
		return Response[[]models.Peer]{HasError: true}
	}
	q.dir.SetPeers(ctx, peers)
	q.log.Debug(ctx, "peers refreshed", "count", len(peers))
	return Response[[]models.Peer]{Result: peers}
}

func (q *queryService) FetchOne(ctx context.Context, id string) Response[*models.Peer] {
	peer, err := q.api.GetPeer(ctx, id)
	if err != nil {
		q.fail(ctx, "fetch peer", err)
		return Response[*models.Peer]{}
	}
	q.dir.Upsert(ctx, *peer)
	return Response[*models.Peer]{Result: peer}
}

func (q *queryService) fail(ctx context.Context, op string, err error) {
	q.log.Error(ctx, "request failed", "op", op, "err", err)
	q.sink.Error(ctx, fmt.Errorf("%s: %w", op, err))
}
