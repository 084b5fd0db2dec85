// Copyright (c) 2025, The eksops Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package serializer encodes and decodes eksops data in JSON, YAML and table form.
//
// Writers send output to stdout, a local file, or an S3 object:
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	err := w.Serialize(ctx, report)
//
//	s3w := serializer.NewS3Writer(s3Client, bucket, key, serializer.FormatJSON)
//	err := s3w.Serialize(ctx, report)
//
// Readers decode JSON or YAML from a file path or http(s) URL, with the format
// taken from the extension:
//
//	event, err := serializer.FromFile[events.SNSEvent](ctx, "event.json")
//
// Table output flattens nested values into dotted keys and is write-only.
//
// HttpReader is a small HTTP client with conservative timeouts, used to fetch
// remote files and confirm SNS subscriptions. RespondJSON buffers the body
// before writing headers.
package serializer
