package tiles

import (
	"fmt"

	"github.com/gekko3d/gsplat/splatrt/rt/core"
	"github.com/gekko3d/gsplat/splatrt/rt/coroutine"
	"github.com/gekko3d/gsplat/splatrt/rt/order"
	"github.com/gekko3d/gsplat/splatrt/rt/splat"
)

// Loader turns generated tile data into a tile tree whose meshes ingest
// asynchronously through sched.
type Loader struct {
	Device core.Device
	Config splat.Config
	Log    core.Logger
	Sched  coroutine.Scheduler
}

// Build creates one child tile per data entry under a new root. The returned
// tasks finish as each mesh becomes drawable. On error every mesh created so
// far is released.
func (l *Loader) Build(data []Data) (*order.Tile, []*coroutine.Task, error) {
	log := core.Scope(l.Log, "tiles")
	root := order.NewTile("root", nil)
	tasks := make([]*coroutine.Task, 0, len(data))

	for _, d := range data {
		mesh := splat.NewMesh(l.Device, l.Config, log)
		tile := order.NewTile(d.Name, mesh)
		tile.Transform.Position = d.Origin
		root.AddChild(tile)

		task, err := mesh.IngestAsync(d.Attributes, l.Sched)
		if err != nil {
			root.Release()
			return nil, nil, fmt.Errorf("tiles: ingest %s: %w", d.Name, err)
		}
		name := d.Name
		task.OnDone(func(err error) {
			if err != nil {
				log.Errorf("tiles: %s: %v", name, err)
				return
			}
			log.Debugf("tiles: %s ready with %d splats", name, mesh.Count())
		})
		tasks = append(tasks, task)
	}
	log.Infof("tiles: streaming %d tiles", len(data))
	return root, tasks, nil
}
