// Package arcgis fetches SOIUSA classification polygons from the ARPA
// Piemonte FeatureServer.
//
// The service stores the whole hierarchy at the finest (Gruppo) level;
// FetchLevel pages through the query endpoint and dissolves the result
// to the requested level (sezioni "SZ" or sottosezioni "STS"),
// filtered to one Alpine half via the PT attribute:
//
//	client := arcgis.NewClient(settings.ArcGISURL, 3)
//	fc, err := client.FetchLevel(ctx, "STS", arcgis.RegionFilter["westalpen"])
//
// Attribution: SOIUSA digitization by Massimo Accorsi, classification
// by Sergio Marazzi et al., geoservice by Arpa Piemonte. Free use with
// attribution.
package arcgis
