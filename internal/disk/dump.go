package disk

import (
	"fmt"
	"io"
	"strings"
)

const dumpRowLen = 16

// DumpCluster writes a hex+ASCII dump of one data cluster, sixteen bytes
// per row, with absolute image offsets in the left column. Clusters that
// look like directories are refused; their records are rendered by
// WalkDir instead.
func (v *Volume) DumpCluster(w io.Writer, cluster uint16) error {
	if cluster < 2 {
		return fmt.Errorf("%w: data cluster %d", ErrInvalidCluster, cluster)
	}
	if v.LooksLikeDirectory(cluster) {
		return fmt.Errorf("cluster %d looks like a directory, refusing raw dump", cluster)
	}

	data, err := v.clusterSlice(cluster)
	if err != nil {
		return err
	}

	base := v.ClusterByteOffset(cluster)
	for i := 0; i < len(data); i += dumpRowLen {
		row := data[i:min(i+dumpRowLen, len(data))]

		var hexCol, asciiCol strings.Builder
		for j, b := range row {
			if j > 0 {
				hexCol.WriteByte(' ')
			}
			fmt.Fprintf(&hexCol, "%02x", b)

			if b >= 0x20 && b < 0x7F {
				asciiCol.WriteByte(b)
			} else {
				asciiCol.WriteByte('.')
			}
		}
		fmt.Fprintf(w, "%08x  %-47s  |%s|\n", base+uint64(i), hexCol.String(), asciiCol.String())
	}
	return nil
}
