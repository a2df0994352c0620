package api

import (
	"github.com/composiohq/composio-go/pkg/catalog"
	"github.com/composiohq/composio-go/pkg/connection"
	"github.com/composiohq/composio-go/pkg/router"
	"github.com/composiohq/composio-go/pkg/triggers"
)

// The client is the single transport behind every backend port.
var (
	_ catalog.Backend    = (*Client)(nil)
	_ connection.Backend = (*Client)(nil)
	_ router.Backend     = (*Client)(nil)
	_ triggers.Backend   = (*Client)(nil)
)
