package capture

import (
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
)

// Interface describes one capturable network interface
type Interface struct {
	Index int
	Name  string
}

// ListInterfaces enumerates the host's network interfaces, sorted by
// index
func ListInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	list := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		list = append(list, Interface{Index: iface.Index, Name: iface.Name})
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Index < list[j].Index
	})

	return list, nil
}

// PrintInterfaces writes one "[<index>] <name>" line per interface
func PrintInterfaces(w io.Writer) error {
	list, err := ListInterfaces()
	if err != nil {
		return err
	}

	for _, iface := range list {
		fmt.Fprintf(w, "[%d] %s\n", iface.Index, iface.Name)
	}

	return nil
}

// ResolveInterface accepts an interface name or a numeric index and
// returns the interface name
func ResolveInterface(nameOrIndex string) (string, error) {
	if nameOrIndex == "" {
		return "", fmt.Errorf("no interface specified")
	}

	if idx, err := strconv.Atoi(nameOrIndex); err == nil {
		iface, err := net.InterfaceByIndex(idx)
		if err != nil {
			return "", fmt.Errorf("invalid interface index %d: %w", idx, err)
		}
		return iface.Name, nil
	}

	iface, err := net.InterfaceByName(nameOrIndex)
	if err != nil {
		return "", fmt.Errorf("invalid interface %q: %w", nameOrIndex, err)
	}

	return iface.Name, nil
}
