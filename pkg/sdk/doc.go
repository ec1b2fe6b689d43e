// Package recdex embeds the recdex document index in a Go program.
//
// A Client owns one in-memory collection. Ingest rebuilds it from a corpus
// of JSON-like documents; Recommend returns the nearest documents for a
// free-text query as {title, url, description} records.
//
//	client, _ := recdex.New(ctx,
//	    recdex.WithEmbedder(myEmbedder),
//	    recdex.WithRedisCache("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	_, _ = client.Ingest(ctx, []recdex.Document{
//	    {"text": "Graph neural networks for molecules", "title": "GNN", "url": "https://..."},
//	})
//	recs, _ := client.Recommend(ctx, "molecular property prediction", 5)
//
// Without WithEmbedder the client uses a deterministic hashing embedder,
// which needs no network access.
package recdex
