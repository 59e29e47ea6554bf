// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package importer bulk-loads the ingredient catalogue.

CSV input has one "title,unit" row per ingredient. A first row whose first
column is "title", "name" or "название" is treated as a header. JSON input is
an array:

	[{"name": "flour", "measurement_unit": "g"}]

Everything is inserted in one transaction:

	res, err := importer.Ingredients(ctx, conn, f, importer.Options{Format: importer.FormatCSV, Delimiter: ';'})
*/
package importer
