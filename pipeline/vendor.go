package pipeline

import (
	"context"
	"fmt"

	"github.com/velmie/graphsync"
	"github.com/velmie/graphsync/graph"
	"github.com/velmie/graphsync/snapshot"
)

// Vendor mirrors vendor_product_mappings as Vendor -> VendorProduct -> Product.
type Vendor struct {
	loader VendorLoader
	writer GraphWriter
	logger graphsync.Logger
}

// NewVendor constructs the vendor-mapping pipeline.
func NewVendor(loader VendorLoader, writer GraphWriter, logger graphsync.Logger) *Vendor {
	return &Vendor{loader: loader, writer: writer, logger: loggerOrNop(logger)}
}

// Handle implements graphsync.Pipeline.
func (p *Vendor) Handle(ctx context.Context, event graphsync.Event) graphsync.Outcome {
	mapping, found, err := p.loader.VendorMapping(ctx, event.AggregateID)
	if err != nil {
		return graphsync.Failed(fmt.Errorf("load vendor mapping %s: %w", event.AggregateID, err))
	}

	if found {
		err := p.writer.Write(ctx,
			graph.VendorUpsert(mapping),
			graph.VendorPruneStaleMappings(mapping),
		)
		if err != nil {
			return graphsync.Failed(err)
		}
		p.logger.Debug("vendor mapping upserted", "mapping_id", mapping.ID, "product_id", mapping.GlobalProductID)

		return graphsync.Applied()
	}

	if !event.IsDelete() {
		return graphsync.SkippedNotFound("vendor mapping missing")
	}

	// The row is gone; only the payload still names the VendorProduct.
	keys, err := snapshot.ParseDeleteKeys(event.Payload)
	if err != nil || !keys.Complete() {
		p.logger.Error("vendor mapping delete cannot be applied",
			"event_id", event.ID.String(),
			"mapping_id", event.AggregateID,
			"err", err,
		)

		return graphsync.SkippedUnsupported("delete payload lacks vendor_id and vendor_product_id")
	}

	if err := p.writer.Write(ctx, graph.VendorDelete(keys)); err != nil {
		return graphsync.Failed(err)
	}
	p.logger.Debug("vendor product deleted", "vendor_id", keys.VendorID, "vendor_product_id", keys.VendorProductID)

	return graphsync.Applied()
}
