// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all server settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

ParseImportFlags returns an ImportConfig for the ingredient importer.

# CLI Flags and Environment Variables

	-p                PORT                   Server port (default 3318)
	-d                DATABASE_URL           Database URL (required)
	-t                DATABASE_TYPE          sqlite or postgres (default sqlite)
	-public-url       PUBLIC_URL             Base of short links
	-media            MEDIA_BACKEND          local or s3 (default local)
	-media-root       MEDIA_ROOT             Local media directory (default media)
	-media-url        MEDIA_URL              Media URL prefix (default /media/)
	-s3-bucket        S3_BUCKET
	-s3-region        S3_REGION
	-s3-endpoint      S3_ENDPOINT
	-s3-access-key    S3_ACCESS_KEY
	-s3-secret-key    S3_SECRET_KEY
	-image-token-len  IMAGE_TOKEN_LENGTH     8 to 32 (default 16)
	-max-image-bytes  MAX_IMAGE_BYTES        (default 10 MiB)
	-max-image-side   MAX_IMAGE_SIDE         (default 8192)
	-login-rate       LOGIN_RATE_PER_MINUTE  0 disables (default 10)
	-log-level        LOG_LEVEL              (default info)
	-log-format       LOG_FORMAT             text or json (default text)
	-env                                     .env file to load

CLI flags take precedence over environment variables. A .env file (./.env, or
the one named by -env) is loaded with godotenv before the fallback; it never
overrides variables already set in the process environment.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - the database type or media backend is unknown
  - MEDIA_BACKEND=s3 without S3_BUCKET and S3_REGION
  - a numeric setting does not parse or is out of range
*/
package cliparse
