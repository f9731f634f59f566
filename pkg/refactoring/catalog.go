package refactoring

// Definition is the source form of one grammar entry.
type Definition struct {
	ID           string
	DisplayName  string
	Template     string
	Aggregate    []int
	Relationship RelationshipType
}

// Refactoring identifiers rendered by the classifier.
const (
	ExtractOperationID        = "EXTRACT_OPERATION"
	ExtractAndMoveOperationID = "EXTRACT_AND_MOVE_OPERATION"
	InlineOperationID         = "INLINE_OPERATION"
	RenameMethodID            = "RENAME_METHOD"
	MoveOperationID           = "MOVE_OPERATION"
	MoveAndRenameOperationID  = "MOVE_AND_RENAME_OPERATION"
	PullUpOperationID         = "PULL_UP_OPERATION"
	PushDownOperationID       = "PUSH_DOWN_OPERATION"
	ChangeMethodSignatureID   = "CHANGE_METHOD_SIGNATURE"
	RenameClassID             = "RENAME_CLASS"
	MoveClassID               = "MOVE_CLASS"
	MoveRenameClassID         = "MOVE_RENAME_CLASS"
	ExtractSuperclassID       = "EXTRACT_SUPERCLASS"
	ExtractInterfaceID        = "EXTRACT_INTERFACE"
	RenameAttributeID         = "RENAME_ATTRIBUTE"
	MoveAttributeID           = "MOVE_ATTRIBUTE"
	MoveRenameAttributeID     = "MOVE_RENAME_ATTRIBUTE"
	PullUpAttributeID         = "PULL_UP_ATTRIBUTE"
	PushDownAttributeID       = "PUSH_DOWN_ATTRIBUTE"
)

// Catalog is the built-in grammar. Templates use %s placeholders; the parse
// pattern of each entry is derived from its template, so rendering and
// parsing cannot drift apart. Aggregate indices are 1-based capture groups.
var Catalog = []Definition{
	{ExtractOperationID, "Extract Method", "Extract Method %s extracted from %s in class %s", []int{2}, Extract},
	{ExtractAndMoveOperationID, "Extract And Move Method", "Extract And Move Method %s extracted from %s in class %s & moved to class %s", []int{2}, ExtractMove},
	{InlineOperationID, "Inline Method", "Inline Method %s inlined to %s in class %s", []int{2}, Inline},
	{"MOVE_AND_INLINE_OPERATION", "Move And Inline Method", "Move And Inline Method %s moved from class %s to class %s & inlined to %s", []int{4}, Inline},
	{RenameMethodID, "Rename Method", "Rename Method %s renamed to %s in class %s", nil, Rename},
	{MoveOperationID, "Move Method", "Move Method %s from class %s to %s from class %s", nil, Move},
	{MoveAndRenameOperationID, "Move And Rename Method", "Move And Rename Method %s from class %s to %s from class %s", nil, MoveRename},
	{PullUpOperationID, "Pull Up Method", "Pull Up Method %s from class %s to %s from class %s", []int{1, 2}, PullUp},
	{PushDownOperationID, "Push Down Method", "Push Down Method %s from class %s to %s from class %s", []int{3, 4}, PushDown},
	{ChangeMethodSignatureID, "Change Signature of Method", "Change Signature of Method %s to %s in class %s", nil, ChangeSignature},
	{"MERGE_OPERATION", "Merge Method", "Merge Method [%s] to %s in class %s", []int{1}, Inline},
	{"SPLIT_OPERATION", "Split Method", "Split Method %s to [%s] in class %s", []int{2}, Extract},
	{RenameClassID, "Rename Class", "Rename Class %s renamed to %s", nil, Rename},
	{MoveClassID, "Move Class", "Move Class %s moved to %s", nil, Move},
	{MoveRenameClassID, "Move And Rename Class", "Move And Rename Class %s moved and renamed to %s", nil, MoveRename},
	{ExtractSuperclassID, "Extract Superclass", "Extract Superclass %s from classes [%s]", []int{2}, ExtractSuper},
	{ExtractInterfaceID, "Extract Interface", "Extract Interface %s from classes [%s]", []int{2}, ExtractSuper},
	{"EXTRACT_SUBCLASS", "Extract Subclass", "Extract Subclass %s from class %s", nil, Extract},
	{"EXTRACT_CLASS", "Extract Class", "Extract Class %s from class %s", nil, Extract},
	{"MERGE_CLASS", "Merge Class", "Merge Class [%s] to %s", []int{1}, Inline},
	{"SPLIT_CLASS", "Split Class", "Split Class %s to [%s]", []int{2}, Extract},
	{"CONVERT_ANONYMOUS_CLASS_TO_TYPE", "Convert Anonymous Class to Type", "Convert Anonymous Class to Type %s was converted to %s", nil, Move},
	{"RENAME_PACKAGE", "Change Package", "Change Package %s to %s", nil, 0},
	{"MOVE_SOURCE_FOLDER", "Move Source Folder", "Move Source Folder %s to %s", nil, 0},
	{RenameAttributeID, "Rename Attribute", "Rename Attribute %s to %s in class %s", nil, Rename},
	{MoveAttributeID, "Move Attribute", "Move Attribute %s from class %s to %s from class %s", nil, Move},
	{MoveRenameAttributeID, "Move And Rename Attribute", "Move And Rename Attribute %s renamed to %s and moved from class %s to class %s", nil, MoveRename},
	{PullUpAttributeID, "Pull Up Attribute", "Pull Up Attribute %s from class %s to %s from class %s", []int{2}, PullUp},
	{PushDownAttributeID, "Push Down Attribute", "Push Down Attribute %s from class %s to %s from class %s", []int{4}, PushDown},
	{"EXTRACT_ATTRIBUTE", "Extract Attribute", "Extract Attribute %s in class %s", nil, Extract},
	{"INLINE_ATTRIBUTE", "Inline Attribute", "Inline Attribute %s in class %s", nil, Inline},
	{"CHANGE_ATTRIBUTE_TYPE", "Change Attribute Type", "Change Attribute Type %s to %s in class %s", nil, ChangeSignature},
	{"EXTRACT_VARIABLE", "Extract Variable", "Extract Variable %s in method %s from class %s", nil, 0},
	{"INLINE_VARIABLE", "Inline Variable", "Inline Variable %s in method %s from class %s", nil, 0},
	{"RENAME_VARIABLE", "Rename Variable", "Rename Variable %s to %s in method %s from class %s", nil, 0},
	{"RENAME_PARAMETER", "Rename Parameter", "Rename Parameter %s to %s in method %s from class %s", nil, ChangeSignature},
	{"ADD_PARAMETER", "Add Parameter", "Add Parameter %s in method %s from class %s", nil, ChangeSignature},
	{"REMOVE_PARAMETER", "Remove Parameter", "Remove Parameter %s in method %s from class %s", nil, ChangeSignature},
	{"CHANGE_PARAMETER_TYPE", "Change Parameter Type", "Change Parameter Type %s to %s in method %s from class %s", nil, ChangeSignature},
	{"CHANGE_RETURN_TYPE", "Change Return Type", "Change Return Type %s to %s in method %s from class %s", nil, ChangeSignature},
	{"REPLACE_VARIABLE_WITH_ATTRIBUTE", "Replace Variable With Attribute", "Replace Variable With Attribute %s to %s in method %s from class %s", nil, 0},
	{"PARAMETERIZE_VARIABLE", "Parameterize Variable", "Parameterize Variable %s to %s in method %s from class %s", nil, ChangeSignature},
	{"RENAME_INTERFACE", "Rename Interface", "Rename Interface %s renamed to %s", nil, Rename},
	{"MOVE_INTERFACE", "Move Interface", "Move Interface %s moved to %s", nil, Move},
}
