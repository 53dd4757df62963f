// Package s3 fetches template documents from Amazon S3.
//
// Templates may be referenced either as local paths or as s3://bucket/key
// URIs; [Source] resolves both so callers never branch on the scheme.
package s3
