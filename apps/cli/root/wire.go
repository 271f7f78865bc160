package root

import (
	announcecmd "github.com/hydranodes/swift-broker/apps/cli/cmd/announce"
	containercmd "github.com/hydranodes/swift-broker/apps/cli/cmd/container"
	instancecmd "github.com/hydranodes/swift-broker/apps/cli/cmd/instance"
	tempurlcmd "github.com/hydranodes/swift-broker/apps/cli/cmd/tempurl"
)

func init() {
	Root().AddCommand(instancecmd.Command())
	Root().AddCommand(announcecmd.Command())
	Root().AddCommand(containercmd.Command())
	Root().AddCommand(tempurlcmd.Command())
}
