package postgres

const (
	// SQL table names:
	collectionTable = "collection"
	documentTable   = "document"
	autosaveTable   = "autosave"

	// SQL column names:
	collectionID     = collectionTable + ".id"
	collectionName   = collectionTable + ".name"
	documentID       = documentTable + ".id"
	documentOwner    = documentTable + ".collection_id"
	documentFields   = documentTable + ".fields"
	documentStatus   = documentTable + ".status"
	documentCreated  = documentTable + ".created"
	documentModified = documentTable + ".modified"
	autosaveID       = autosaveTable + ".id"
	autosaveDocument = autosaveTable + ".document_id"
	autosaveAuthor   = autosaveTable + ".author"
	autosaveFields   = autosaveTable + ".fields"
	autosavePayload  = autosaveTable + ".payload"
	autosaveCreated  = autosaveTable + ".created"
	autosaveModified = autosaveTable + ".modified"

	// This join selects all documents and autosave snapshots,
	// including documents with no snapshots
	documentAutosaveJoin = (documentTable + " LEFT OUTER JOIN " +
		autosaveTable + " ON " + autosaveDocument + "=" + documentID)

	// WHERE clause fragments:
	documentInCollection = documentOwner + "=" + collectionID
)

// Parameterized WHERE clause fragments:

func isCollection(qp *queryParams, id int64) string {
	return collectionID + "=" + qp.Param(id)
}

func isDocument(qp *queryParams, id int64) string {
	return documentID + "=" + qp.Param(id)
}

func inThisCollection(qp *queryParams, id int64) string {
	return documentOwner + "=" + qp.Param(id)
}

func isAutosave(qp *queryParams, id int64) string {
	return autosaveID + "=" + qp.Param(id)
}

func inThisDocument(qp *queryParams, id int64) string {
	return autosaveDocument + "=" + qp.Param(id)
}

func byThisAuthor(qp *queryParams, author string) string {
	return autosaveAuthor + "=" + qp.Param(author)
}
