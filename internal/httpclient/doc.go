// Package httpclient provides the HTTP plumbing shared by the geodata
// fetchers.
//
// It wraps net/http with a User-Agent header, status checking and a
// streaming downloader:
//
//	client := httpclient.NewClient(5 * time.Minute)
//	body, err := client.PostForm(ctx, overpassURL, url.Values{"data": {query}})
//	err = client.DownloadFile(ctx, tileURL, destPath)
//
// Timeouts are per client, not per call: Overpass polygon queries get
// a long-lived client, everything else a short one.
package httpclient
