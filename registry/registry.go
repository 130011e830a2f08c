// Package registry tracks pid to package bindings as processes start and die.
package registry

import (
	"strconv"
	"time"

	"github.com/pidcat-go/pidcat/common"

	gocache "github.com/patrickmn/go-cache"
)

// Registry is the single-writer pid catalog. Live entries answer filter
// lookups; entries of died processes are parked in a TTL cache so late
// log lines still resolve a name for display, but they can never satisfy
// a package-filter match again.
type Registry struct {
	live        map[int]string
	dead        *gocache.Cache
	lastStarted int
}

// New makes an empty registry.
func New() *Registry {
	grace := common.DeadProcessGraceSeconds * time.Second
	return &Registry{
		live: map[int]string{},
		dead: gocache.New(grace, 2*grace),
	}
}

// OnStart inserts or overwrites the live entry for pid.
func (r *Registry) OnStart(pid int, pkg string) {
	r.live[pid] = pkg
	r.dead.Delete(strconv.Itoa(pid))
	r.lastStarted = pid
}

// OnDeath marks the entry dead. Unknown pids are a no-op.
func (r *Registry) OnDeath(pid int) {
	pkg, ok := r.live[pid]
	if !ok {
		return
	}
	delete(r.live, pid)
	r.dead.SetDefault(strconv.Itoa(pid), pkg)
}

// PackageOf resolves a live binding only.
func (r *Registry) PackageOf(pid int) (string, bool) {
	pkg, ok := r.live[pid]
	return pkg, ok
}

// DisplayPackageOf resolves a name for rendering, falling back to
// recently-died entries and then to the unknown marker.
func (r *Registry) DisplayPackageOf(pid int) string {
	if pkg, ok := r.live[pid]; ok {
		return pkg
	}
	if pkg, ok := r.dead.Get(strconv.Itoa(pid)); ok {
		return pkg.(string)
	}
	return common.UnknownPackage
}

// LastStarted returns the most recently started pid, 0 if none. Native
// crash backtraces are re-attributed to it.
func (r *Registry) LastStarted() int {
	return r.lastStarted
}

// Len counts live entries.
func (r *Registry) Len() int {
	return len(r.live)
}
