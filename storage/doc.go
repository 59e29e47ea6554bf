// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage persists uploaded media.

Two backends implement Storage:

  - Local writes files below a root directory. The router serves them under
    the media URL prefix.
  - S3 puts objects into an S3-compatible bucket with aws-sdk-go-v2. Set an
    endpoint to talk to MinIO, Spaces or R2.

Keys are slash separated and never absolute:

	users/recipes/<author-id>/<token>.<format>
	users/avatars/<user-id>/<token>.<format>
*/
package storage
