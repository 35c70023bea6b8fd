package graph

import (
	"fmt"

	"github.com/poiesic/grag/core"
)

// ErrIndexOutOfRange is returned when a node index does not address an indexed node.
var ErrIndexOutOfRange = fmt.Errorf("%w: node index out of range", core.ErrInvalidArgument)
