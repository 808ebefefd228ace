package q2file

import (
	"sort"
)

const (
	ClusterInvalid = ClusterId(65535)
)

type ClusterId uint16

type TreeLeaf struct {
	LeafIndex int   // index in bsp leaf array
	Faces     []int // faces potentially visible from this leaf, sorted
}

// BSPTree answers which faces can be seen from a point, using the
// potentially visible sets of the map
type BSPTree struct {
	TreeLeaves []TreeLeaf
	mapData    *MapData
}

func NewBSPTree(mapData *MapData) *BSPTree {
	leavesInCluster := getLeavesInCluster(mapData)
	facesInCluster := getFacesInCluster(mapData, leavesInCluster)

	treeLeaves := make([]TreeLeaf, len(mapData.BSPLeaves))
	facesFromCluster := make(map[ClusterId][]int)
	for i, leaf := range mapData.BSPLeaves {
		treeLeaves[i] = TreeLeaf{LeafIndex: i, Faces: []int{}}

		c := ClusterId(leaf.Cluster)
		if c == ClusterInvalid {
			continue
		}
		faces, ok := facesFromCluster[c]
		if !ok {
			faces = getFacesFromCluster(mapData, c, facesInCluster)
			facesFromCluster[c] = faces
		}
		treeLeaves[i].Faces = faces
	}

	return &BSPTree{
		TreeLeaves: treeLeaves,
		mapData:    mapData,
	}
}

func getLeavesInCluster(mapData *MapData) map[ClusterId][]int {
	leavesInCluster := make(map[ClusterId][]int)
	for index, leaf := range mapData.BSPLeaves {
		c := ClusterId(leaf.Cluster)
		leavesInCluster[c] = append(leavesInCluster[c], index)
	}
	return leavesInCluster
}

// Flatten the leaf faces of every cluster into a single list
func getFacesInCluster(mapData *MapData, leavesInCluster map[ClusterId][]int) map[ClusterId][]int {
	facesInCluster := make(map[ClusterId][]int)
	for cluster, leaves := range leavesInCluster {
		var faces []int
		for _, leafIdx := range leaves {
			leaf := mapData.BSPLeaves[leafIdx]
			for offset := 0; offset < int(leaf.NumLeafFaces); offset++ {
				i := int(leaf.FirstLeafFace) + offset
				if i < len(mapData.LeafFaces) {
					faces = append(faces, int(mapData.LeafFaces[i]))
				}
			}
		}
		facesInCluster[cluster] = uniqueSorted(faces)
	}
	return facesInCluster
}

// Use the PVS to collect the faces of every cluster visible from cluster
func getFacesFromCluster(mapData *MapData, cluster ClusterId, facesInCluster map[ClusterId][]int) []int {
	visibleFaces := append([]int(nil), facesInCluster[cluster]...)

	for _, other := range mapData.VisibleClusters(cluster) {
		visibleFaces = append(visibleFaces, facesInCluster[other]...)
	}
	return uniqueSorted(visibleFaces)
}

// VisibleClusters decompresses the PVS of a cluster
func (mapData *MapData) VisibleClusters(cluster ClusterId) []ClusterId {
	if int(cluster) >= len(mapData.VisibilityOffsets) {
		return nil
	}
	var visible []ClusterId

	v := int(mapData.VisibilityOffsets[cluster].Pvs)
	numClusters := len(mapData.VisibilityOffsets)
	otherCluster := 0
	for otherCluster < numClusters && v < len(mapData.VisibilityData) {
		if mapData.VisibilityData[v] == 0 {
			// Zeros are run-length encoded: the next byte counts zero bytes
			v++
			if v >= len(mapData.VisibilityData) {
				break
			}
			otherCluster += 8 * int(mapData.VisibilityData[v])
		} else {
			// Each byte holds the visibility of 8 clusters
			for bit := 0; bit < 8 && otherCluster < numClusters; bit++ {
				if mapData.VisibilityData[v]&(1<<uint32(bit)) != 0 {
					visible = append(visible, ClusterId(otherCluster))
				}
				otherCluster++
			}
		}
		v++
	}
	return visible
}

func uniqueSorted(ids []int) []int {
	if len(ids) == 0 {
		return []int{}
	}
	sort.Ints(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// FindLeaf walks the BSP from the root to the leaf containing position
func (tree *BSPTree) FindLeaf(position [3]float32) TreeLeaf {
	mapData := tree.mapData
	if len(mapData.Nodes) == 0 || len(tree.TreeLeaves) == 0 {
		return TreeLeaf{LeafIndex: -1}
	}

	var d float32
	nodeId := 0
	// Leaves have a negative node id
	for nodeId >= 0 {
		node := mapData.Nodes[nodeId]
		plane := mapData.Planes[node.Plane]

		if plane.Type < uint32(3) {
			d = position[plane.Type] - plane.Distance
		} else {
			dotProduct := position[0]*plane.Normal[0] + position[1]*plane.Normal[1] + position[2]*plane.Normal[2]
			d = dotProduct - plane.Distance
		}

		// Determine which side of the plane the position is on
		if d < 0 {
			nodeId = int(node.BackChild)
		} else {
			nodeId = int(node.FrontChild)
		}
	}
	leafIdx := -(nodeId + 1)
	if leafIdx >= len(tree.TreeLeaves) {
		return TreeLeaf{LeafIndex: -1}
	}
	return tree.TreeLeaves[leafIdx]
}
