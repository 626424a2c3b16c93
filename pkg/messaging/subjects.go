package messaging

// Subjects of the product change events.
const (
	ProductsSubjectPrefix  = "inventory.products."
	ProductsAddedSubject   = ProductsSubjectPrefix + "added"
	ProductsUpdatedSubject = ProductsSubjectPrefix + "updated"
	ProductsDeletedSubject = ProductsSubjectPrefix + "deleted"
	// ProductsAllSubjects matches every product change subject.
	ProductsAllSubjects = ProductsSubjectPrefix + ">"
)
