package ir

// Attributes is a sealed interface over the per-class attribute variants.
// Only the eight *Attributes types in this file implement it, one per
// NodeClass. Unknown attribute shapes are unrepresentable in the IR; the
// reader rejects them before construction and the emitter re-checks the
// variant against the node class as a capability guard.
type Attributes interface {
	// NodeClass returns the class this variant belongs to.
	NodeClass() NodeClass

	attributes() // sealed
}

// ObjectAttributes carries Object-class attributes.
type ObjectAttributes struct {
	EventNotifier uint8 `json:"event_notifier"`
}

func (ObjectAttributes) NodeClass() NodeClass { return ClassObject }
func (ObjectAttributes) attributes()          {}

// VariableAttributes carries Variable-class attributes. DataType references
// a node of class DataType in the same graph or its imported base.
type VariableAttributes struct {
	DataType        NodeID   `json:"data_type"`
	ValueRank       int32    `json:"value_rank"`
	ArrayDimensions []uint32 `json:"array_dimensions,omitempty"`
	AccessLevel     uint8    `json:"access_level"`
}

func (VariableAttributes) NodeClass() NodeClass { return ClassVariable }
func (VariableAttributes) attributes()          {}

// MethodAttributes carries Method-class attributes.
type MethodAttributes struct {
	Executable     bool `json:"executable"`
	UserExecutable bool `json:"user_executable"`
}

func (MethodAttributes) NodeClass() NodeClass { return ClassMethod }
func (MethodAttributes) attributes()          {}

// ObjectTypeAttributes carries ObjectType-class attributes.
type ObjectTypeAttributes struct {
	IsAbstract bool `json:"is_abstract"`
}

func (ObjectTypeAttributes) NodeClass() NodeClass { return ClassObjectType }
func (ObjectTypeAttributes) attributes()          {}

// VariableTypeAttributes carries VariableType-class attributes.
type VariableTypeAttributes struct {
	DataType   NodeID `json:"data_type"`
	ValueRank  int32  `json:"value_rank"`
	IsAbstract bool   `json:"is_abstract"`
}

func (VariableTypeAttributes) NodeClass() NodeClass { return ClassVariableType }
func (VariableTypeAttributes) attributes()          {}

// ReferenceTypeAttributes carries ReferenceType-class attributes.
// Symmetric reference types have no inverse name.
type ReferenceTypeAttributes struct {
	IsAbstract  bool   `json:"is_abstract"`
	Symmetric   bool   `json:"symmetric"`
	InverseName string `json:"inverse_name,omitempty"`
}

func (ReferenceTypeAttributes) NodeClass() NodeClass { return ClassReferenceType }
func (ReferenceTypeAttributes) attributes()          {}

// DataTypeAttributes carries DataType-class attributes.
type DataTypeAttributes struct {
	IsAbstract bool `json:"is_abstract"`
}

func (DataTypeAttributes) NodeClass() NodeClass { return ClassDataType }
func (DataTypeAttributes) attributes()          {}

// ViewAttributes carries View-class attributes.
type ViewAttributes struct {
	ContainsNoLoops bool  `json:"contains_no_loops"`
	EventNotifier   uint8 `json:"event_notifier"`
}

func (ViewAttributes) NodeClass() NodeClass { return ClassView }
func (ViewAttributes) attributes()          {}
