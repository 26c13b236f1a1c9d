package history

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// History queries.
const (
	queryInsertHistory = `
		INSERT INTO history_entries (
			id, timestamp, type, sku, old_quantity, new_quantity,
			difference, username, source, notes
		) VALUES (
			@id, @timestamp, @type, @sku, @old_quantity, @new_quantity,
			@difference, @username, @source, @notes
		)`

	// Ring-buffer semantics: once over cap, the oldest rows go.
	queryTrimHistory = `
		DELETE FROM history_entries
		WHERE id IN (
			SELECT id FROM history_entries
			ORDER BY timestamp ASC, id ASC
			LIMIT GREATEST((SELECT COUNT(*) FROM history_entries) - $1, 0)
		)`

	queryPruneHistory = `
		DELETE FROM history_entries
		WHERE timestamp < $1`
)

// Snapshot queries.
const (
	queryInsertSnapshot = `
		INSERT INTO snapshots (
			id, timestamp, type, total_products, total_value, products
		) VALUES (
			@id, @timestamp, @type, @total_products, @total_value, @products
		)`

	queryTrimSnapshots = `
		DELETE FROM snapshots
		WHERE id IN (
			SELECT id FROM snapshots
			ORDER BY timestamp ASC, id ASC
			LIMIT GREATEST((SELECT COUNT(*) FROM snapshots) - $1, 0)
		)`

	queryGetSnapshot = `
		SELECT id, timestamp, type, total_products, total_value, products
		FROM snapshots
		WHERE id = $1`

	queryPruneSnapshots = `
		DELETE FROM snapshots
		WHERE timestamp < $1`
)

// Upload queries.
const (
	queryInsertUpload = `
		INSERT INTO upload_results (
			upload_id, total_items, success_count, error_count,
			errors, warnings, timestamp
		) VALUES (
			@upload_id, @total_items, @success_count, @error_count,
			@errors, @warnings, @timestamp
		)`

	queryTrimUploads = `
		DELETE FROM upload_results
		WHERE upload_id IN (
			SELECT upload_id FROM upload_results
			ORDER BY timestamp ASC, upload_id ASC
			LIMIT GREATEST((SELECT COUNT(*) FROM upload_results) - $1, 0)
		)`

	queryListUploads = `
		SELECT upload_id, total_items, success_count, error_count,
			errors, warnings, timestamp
		FROM upload_results
		ORDER BY timestamp DESC
		LIMIT $1`
)

// Alert queries.
const (
	queryInsertAlert = `
		INSERT INTO alerts (
			id, type, severity, sku, product_name,
			current_stock, threshold, message, timestamp
		) VALUES (
			@id, @type, @severity, @sku, @product_name,
			@current_stock, @threshold, @message, @timestamp
		)`

	queryTrimAlerts = `
		DELETE FROM alerts
		WHERE id IN (
			SELECT id FROM alerts
			ORDER BY timestamp ASC, id ASC
			LIMIT GREATEST((SELECT COUNT(*) FROM alerts) - $1, 0)
		)`

	queryListRecentAlerts = `
		SELECT id, type, severity, sku, product_name,
			current_stock, threshold, message, timestamp
		FROM alerts
		ORDER BY timestamp DESC
		LIMIT $1`
)
