// Package s3csv adapts a CSV object stored in S3 into a vizquery
// DataSource with NONE capability (§11.3): the adapter can only hand
// back every row, so the entire query — filter, group/pivot, sort,
// pagination, select, label, format — completes in memory.
package s3csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
	vizquery "github.com/lychee-technology/vizquery"
)

// Source is a DataSource that reads one CSV object from S3 on every
// Execute call. Its column types are declared up front (Columns), since
// CSV carries no schema of its own.
type Source struct {
	Downloader *manager.Downloader
	Bucket     string
	Key        string
	Columns    []vizquery.ColumnDescription
}

// NewSource builds a Source over an s3.Client-backed manager.Downloader.
func NewSource(client *s3.Client, bucket, key string, columns []vizquery.ColumnDescription) *Source {
	return &Source{Downloader: manager.NewDownloader(client), Bucket: bucket, Key: key, Columns: columns}
}

// NewDefaultSource loads the AWS SDK's standard credential chain
// (env vars, shared config, IMDS) via config.LoadDefaultConfig, the way
// a CLI tool would, and builds an s3.Client from it.
func NewDefaultSource(ctx context.Context, bucket, key string, columns []vizquery.ColumnDescription) (*Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, vizquery.NewInternalError(fmt.Sprintf("failed to load AWS config: %v", err))
	}
	client := s3.NewFromConfig(cfg)
	return NewSource(client, bucket, key, columns), nil
}

func (s *Source) Capability() vizquery.Capability { return vizquery.CapabilityNone }

func (s *Source) Schema() vizquery.Schema {
	t, _ := vizquery.NewDataTable(s.Columns)
	return t
}

// Execute ignores q entirely (capability NONE means the completion
// query does everything) and returns the whole CSV object as a table.
func (s *Source) Execute(_ *vizquery.Query) (*vizquery.DataTable, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.Downloader.Download(context.Background(), buf, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if ok := asSmithyAPIError(err, &apiErr); ok {
			return nil, vizquery.NewInternalError(fmt.Sprintf("s3 download failed: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage()))
		}
		return nil, vizquery.NewInternalError(fmt.Sprintf("s3 download failed: %v", err))
	}

	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	header, err := reader.Read()
	if err != nil && err != io.EOF {
		return nil, vizquery.NewInternalError(fmt.Sprintf("failed to read CSV header: %v", err))
	}

	table, err := vizquery.NewDataTable(s.Columns)
	if err != nil {
		return nil, err
	}
	columnIndexByHeader := make(map[string]int, len(header))
	for i, h := range header {
		columnIndexByHeader[h] = i
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, vizquery.NewInternalError(fmt.Sprintf("failed to read CSV row: %v", err))
		}
		values := make([]vizquery.Value, len(s.Columns))
		for ci, col := range s.Columns {
			raw := ""
			if hi, ok := columnIndexByHeader[col.ID]; ok && hi < len(record) {
				raw = record[hi]
			}
			values[ci] = parseCell(raw, col.Type)
		}
		if err := table.AddRow(values); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func parseCell(raw string, t vizquery.Type) vizquery.Value {
	if raw == "" {
		return vizquery.NullOf(t)
	}
	switch t {
	case vizquery.Number:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return vizquery.NullOf(t)
		}
		return vizquery.NumberValue(n)
	case vizquery.Boolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return vizquery.NullOf(t)
		}
		return vizquery.BoolValue(b)
	default:
		return vizquery.TextValue(raw)
	}
}

func asSmithyAPIError(err error, target *smithy.APIError) bool {
	type apiError interface {
		error
		ErrorCode() string
		ErrorMessage() string
		ErrorFault() smithy.ErrorFault
	}
	var ae apiError
	for e := err; e != nil; {
		if cast, ok := e.(apiError); ok {
			ae = cast
			break
		}
		unwrapper, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = unwrapper.Unwrap()
	}
	if ae == nil {
		return false
	}
	*target = ae
	return true
}
