// Package reader turns encoded Avro input into populated target columns,
// in two modes.
//
// ContainerReader reads self-describing Avro object container files: the
// writer's schema travels in the file header, one decode plan is compiled
// against the target columns when the reader opens, and that plan is reused
// for every row. There is no per-row boundary to recover to, so corrupt data
// is fatal to the read.
//
// ConfluentReader reads headerless framed messages: each message carries only
// a 5-byte prefix (magic byte plus big-endian schema identifier), and the
// schema is resolved through a registry client. Plans are cached per reader
// instance by schema identifier, because one stream can multiplex several
// writer schemas and reader instances are recreated per batch while
// identifiers recur. A corrupt message is isolated at its message boundary:
// ReadBatch reports it and continues with the next message.
//
// Basic Usage (headerless mode):
//
//	registry, err := schema_registry.ForEndpoint(schema_registry.Config{
//	    URL: "http://localhost:8081",
//	})
//	if err != nil {
//	    return err
//	}
//	r := reader.NewConfluentReader(registry, target, reader.Options{
//	    AllowMissingFields: true,
//	})
//	rows, msgErrs, err := r.ReadBatch(ctx, messages, cols, ext)
package reader
