package graph

import (
	"fmt"

	"github.com/velmie/graphsync/snapshot"
)

const auditUpsertCypher = `
MERGE (ce:ChangeEvent {id: $id})
SET ce.table_name = $table_name,
    ce.record_id = $record_id,
    ce.action = $action,
    ce.changed_at = $changed_at,
    ce.ip_address = $ip_address,
    ce.user_agent = $user_agent
WITH ce
FOREACH (_ IN CASE WHEN $changed_by IS NULL THEN [] ELSE [1] END |
  MERGE (u:InternalUser {id: $changed_by})
  MERGE (u)-[:MADE_CHANGE]->(ce)
)`

const auditDeleteCypher = `MATCH (ce:ChangeEvent {id: $id}) DETACH DELETE ce`

const vendorUpsertCypher = `
MERGE (v:Vendor {id: $vendor_id})
SET v.name = $vendor_name
MERGE (p:Product {id: $global_product_id})
SET p.name = coalesce(p.name, $product_name)
MERGE (vp:VendorProduct {vendor_id: $vendor_id, vendor_product_id: $vendor_product_id})
SET vp.mapping_id = $mapping_id,
    vp.created_at = $created_at
MERGE (v)-[:OWNS_SKU]->(vp)
MERGE (vp)-[m:MAPPED_TO]->(p)
SET m.confidence = $confidence,
    m.method = $method,
    m.created_at = $created_at`

const vendorPruneCypher = `
MATCH (vp:VendorProduct {vendor_id: $vendor_id, vendor_product_id: $vendor_product_id})-[m:MAPPED_TO]->(p:Product)
WHERE p.id <> $global_product_id
DELETE m`

const vendorDeleteCypher = `
MATCH (vp:VendorProduct {vendor_id: $vendor_id, vendor_product_id: $vendor_product_id})
DETACH DELETE vp`

// AuditUpsert merges the ChangeEvent and, when the change has an author, its InternalUser and MADE_CHANGE edge.
func AuditUpsert(entry snapshot.AuditEntry) Statement {
	var changedBy any
	if entry.ChangedBy != "" {
		changedBy = entry.ChangedBy
	}

	return Statement{
		Cypher: auditUpsertCypher,
		Params: map[string]any{
			"id":         entry.ID,
			"table_name": entry.TableName,
			"record_id":  entry.RecordID,
			"action":     entry.Action,
			"changed_at": snapshot.Time(entry.ChangedAt),
			"ip_address": snapshot.String(entry.IPAddress),
			"user_agent": snapshot.String(entry.UserAgent),
			"changed_by": changedBy,
		},
	}
}

// AuditAffected links the ChangeEvent to the audited entity. The target is matched, not merged, so a missing
// entity leaves the statement without rows and nothing changes.
func AuditAffected(label Label, entry snapshot.AuditEntry) Statement {
	return Statement{
		Cypher: fmt.Sprintf(
			"MATCH (ce:ChangeEvent {id: $id})\nMATCH (e:%s {%s: $record_id})\nMERGE (ce)-[:AFFECTED]->(e)",
			mustLabel(label),
			label.KeyProperty(),
		),
		Params: map[string]any{
			"id":        entry.ID,
			"record_id": entry.RecordID,
		},
	}
}

// AuditDelete removes a ChangeEvent; an absent node is a no-op.
func AuditDelete(id string) Statement {
	return Statement{
		Cypher: auditDeleteCypher,
		Params: map[string]any{"id": id},
	}
}

// LineageClear drops every PRODUCED_BY edge from the entity to a LineageRun.
func LineageClear(label Label, entityID string) Statement {
	return Statement{
		Cypher: fmt.Sprintf(
			"MATCH (e:%s {id: $entity_id})-[old:PRODUCED_BY]->(:LineageRun)\nDELETE old",
			mustLabel(label),
		),
		Params: map[string]any{"entity_id": entityID},
	}
}

// LineageRebuild recreates the lineage subgraph of the entity from runs. The entity is matched, never created.
func LineageRebuild(label Label, entityID string, runs []snapshot.LineageRun) Statement {
	rows := make([]any, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, map[string]any{
			"id":                     run.ID,
			"source_system":          run.SourceSystem,
			"transformation_applied": snapshot.String(run.TransformationApplied),
			"bronze_record_id":       snapshot.String(run.BronzeRecordID),
			"silver_record_id":       snapshot.String(run.SilverRecordID),
			"ingested_at":            snapshot.Time(run.IngestedAt),
			"processed_at":           snapshot.Time(run.ProcessedAt),
			"created_at":             snapshot.Time(run.CreatedAt),
		})
	}

	return Statement{
		Cypher: fmt.Sprintf(`
MATCH (e:%s {id: $entity_id})
UNWIND $rows AS row
MERGE (ss:SourceSystem {name: row.source_system})
MERGE (lr:LineageRun {id: row.id})
SET lr.transformation_applied = row.transformation_applied,
    lr.ingested_at = row.ingested_at,
    lr.processed_at = row.processed_at,
    lr.created_at = row.created_at
MERGE (e)-[:PRODUCED_BY]->(lr)
MERGE (lr)-[:EMITTED_BY]->(ss)
FOREACH (_ IN CASE WHEN row.bronze_record_id IS NULL THEN [] ELSE [1] END |
  MERGE (br:BronzeRecord {id: row.bronze_record_id})
  MERGE (lr)-[:CONSUMED]->(br)
)
FOREACH (_ IN CASE WHEN row.silver_record_id IS NULL THEN [] ELSE [1] END |
  MERGE (sr:SilverRecord {id: row.silver_record_id})
  MERGE (lr)-[:CONSUMED]->(sr)
)`, mustLabel(label)),
		Params: map[string]any{
			"entity_id": entityID,
			"rows":      rows,
		},
	}
}

// QualityUpdate sets the data quality attributes on an existing entity node.
func QualityUpdate(label Label, score snapshot.QualityScore) Statement {
	var issues any
	if score.Issues != nil {
		issues = score.Issues
	}

	return Statement{
		Cypher: fmt.Sprintf(`
MATCH (e:%s {id: $entity_id})
SET e.quality_score = $quality_score,
    e.completeness = $completeness,
    e.accuracy = $accuracy,
    e.dq_last_checked = $last_checked,
    e.dq_issues = $issues`, mustLabel(label)),
		Params: map[string]any{
			"entity_id":     score.EntityID,
			"quality_score": snapshot.Float(score.QualityScore),
			"completeness":  snapshot.Float(score.Completeness),
			"accuracy":      snapshot.Float(score.Accuracy),
			"last_checked":  snapshot.Time(score.LastChecked),
			"issues":        issues,
		},
	}
}

// VendorUpsert merges Vendor, Product, VendorProduct and their edges. The product name is only written when the
// node has none; mapping confidence and method are overwritten every time.
func VendorUpsert(mapping snapshot.VendorMapping) Statement {
	return Statement{
		Cypher: vendorUpsertCypher,
		Params: map[string]any{
			"mapping_id":        mapping.ID,
			"vendor_id":         mapping.VendorID,
			"vendor_product_id": mapping.VendorProductID,
			"global_product_id": mapping.GlobalProductID,
			"vendor_name":       snapshot.String(mapping.VendorName),
			"product_name":      snapshot.String(mapping.ProductName),
			"confidence":        snapshot.Float(mapping.ConfidenceScore),
			"method":            snapshot.String(mapping.MappingMethod),
			"created_at":        snapshot.Time(mapping.CreatedAt),
		},
	}
}

// VendorPruneStaleMappings removes MAPPED_TO edges to products other than the mapping's current one.
func VendorPruneStaleMappings(mapping snapshot.VendorMapping) Statement {
	return Statement{
		Cypher: vendorPruneCypher,
		Params: map[string]any{
			"vendor_id":         mapping.VendorID,
			"vendor_product_id": mapping.VendorProductID,
			"global_product_id": mapping.GlobalProductID,
		},
	}
}

// VendorDelete detach-deletes the VendorProduct identified by keys.
func VendorDelete(keys snapshot.DeleteKeys) Statement {
	return Statement{
		Cypher: vendorDeleteCypher,
		Params: map[string]any{
			"vendor_id":         keys.VendorID,
			"vendor_product_id": keys.VendorProductID,
		},
	}
}

func mustLabel(label Label) Label {
	if !label.Valid() {
		panic(fmt.Sprintf("graph: unknown label %q", string(label)))
	}

	return label
}
