// Package kafka provides the Kafka consumer side of the ingestion pipeline.
//
// A Source fetches batches of framed messages from one topic and hands their
// values to a reader.ConfluentReader for decoding into target columns. The
// Source manages connection lifecycle and offset commits only; schema
// resolution and plan caching live in the reader so they follow batch
// lifecycle, not connection lifecycle.
//
// Basic Usage:
//
//	source, err := kafka.NewSource(kafka.Config{
//	    Brokers: []string{"localhost:9092"},
//	    Topic:   "events",
//	    GroupID: "ingest-worker",
//	})
//	if err != nil {
//	    return err
//	}
//	defer source.GracefulShutdown()
//
//	cr := reader.NewConfluentReader(registry, target, reader.Options{
//	    AllowMissingFields: true,
//	})
//
//	msgs, err := source.FetchBatch(ctx)
//	if err != nil {
//	    return err
//	}
//	rows, msgErrs, err := source.DecodeBatch(ctx, cr, msgs, cols, ext)
//	if err != nil {
//	    return err
//	}
//	if err := source.Commit(ctx, msgs...); err != nil {
//	    return err
//	}
//
// Corrupt messages inside a batch are reported in msgErrs and do not poison
// the rest of the batch; offsets for the whole batch are still committed so
// a bad message is not redelivered forever.
//
// Using with FX:
//
//	app := fx.New(
//	    logger.FXModule,
//	    kafka.FXModule,
//	    fx.Provide(func() kafka.Config {
//	        return kafka.Config{
//	            Brokers: []string{"localhost:9092"},
//	            Topic:   "events",
//	            GroupID: "ingest-worker",
//	        }
//	    }),
//	)
package kafka
