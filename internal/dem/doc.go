// Package dem downloads and reads SRTM elevation tiles.
//
// Tiles come from a public mirror in the "skadi" layout, one gzipped
// HGT file per 1x1 degree cell, named after the cell's south-west
// corner (N47E011.hgt.gz). Each file holds a square grid of big-endian
// 16-bit elevations in meters, rows running north to south.
//
// # Usage
//
//	client := dem.NewClient(settings.DEMTileURL)
//	for _, tile := range dem.TilesFor(bbox) {
//		if err := client.Download(ctx, tile, dir); err != nil {
//			return err
//		}
//	}
//	mosaic, err := dem.LoadMosaic(dir, bbox)
//	elev := mosaic.Elevation(11.3, 47.2)
//
// Cells that are fully open sea have no tile on the mirror. Download
// treats the resulting 404 as success and the mosaic reads the missing
// cell as elevation zero.
package dem
