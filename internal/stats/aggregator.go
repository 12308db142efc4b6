package stats

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/audi70r/cocostat/internal/gitlog"
)

const dayLayout = "2006-01-02"

// Aggregator processes commits and builds statistics
type Aggregator struct {
	repo     *Repository
	timezone *time.Location
}

// NewAggregator creates a new statistics aggregator
func NewAggregator(repoPath string, dateRange DateRange, tz *time.Location) *Aggregator {
	if tz == nil {
		tz = time.Local
	}
	return &Aggregator{
		repo:     NewRepository(repoPath, dateRange),
		timezone: tz,
	}
}

// ProcessCommits adds every commit in order
func (a *Aggregator) ProcessCommits(commits []gitlog.Commit) {
	for i := range commits {
		a.ProcessCommit(&commits[i])
	}
}

// ProcessCommit adds a commit's data to the statistics. Commits outside
// the date range are counted in Skipped and otherwise ignored.
func (a *Aggregator) ProcessCommit(c *gitlog.Commit) bool {
	when := c.Time()
	if !a.repo.DateRange.Contains(when) {
		a.repo.Skipped++
		return false
	}
	a.repo.TotalCommits++

	author, ok := a.repo.Authors[c.Author]
	if !ok {
		author = NewAuthorStats(c.Author)
		a.repo.Authors[c.Author] = author
		a.repo.TotalAuthors++
	}

	author.Commits++
	if author.FirstCommit.IsZero() || when.Before(author.FirstCommit) {
		author.FirstCommit = when
	}
	if when.After(author.LastCommit) {
		author.LastCommit = when
	}

	local := when.In(a.timezone)
	a.repo.DailyActivity[local.Format(dayLayout)]++

	// Sunday=0 becomes Monday=0
	weekday := (int(local.Weekday()) + 6) % 7
	a.repo.HourlyMatrix[weekday][local.Hour()]++

	for _, fc := range c.Changes {
		a.processChange(c.Author, author, fc)
	}
	return true
}

func (a *Aggregator) processChange(name string, author *AuthorStats, fc gitlog.FileChange) {
	filePath := fc.File
	if _, to, renamed := gitlog.SplitRename(fc.File); renamed {
		filePath = to
		a.repo.Renames++
	}

	added, deleted := fc.Additions(), fc.Deletions()
	if fc.IsBinary() {
		added, deleted = 0, 0
		a.repo.BinaryChanges++
	}
	changes := added + deleted

	author.Additions += added
	author.Deletions += deleted
	author.FilesTouched[filePath]++

	a.repo.TotalAdditions += added
	a.repo.TotalDeletions += deleted

	fileStat, ok := a.repo.FileStats[filePath]
	if !ok {
		fileStat = NewFileStats(filePath)
		a.repo.FileStats[filePath] = fileStat
	}
	fileStat.Additions += added
	fileStat.Deletions += deleted
	fileStat.TotalChanges += changes
	fileStat.TouchCount++
	fileStat.Authors[name]++
	fileStat.Binary = fileStat.Binary || fc.IsBinary()

	dir := getTopDir(filePath)
	dirStat, ok := a.repo.DirStats[dir]
	if !ok {
		dirStat = NewDirStats(dir)
		a.repo.DirStats[dir] = dirStat
	}
	dirStat.TotalChanges += changes
	dirStat.TouchCount++

	dirAuthor, ok := dirStat.Authors[name]
	if !ok {
		dirAuthor = &DirAuthorStats{Name: name}
		dirStat.Authors[name] = dirAuthor
	}
	dirAuthor.Touches++
	dirAuthor.Changes += changes
}

// Finalize calculates derived statistics after all commits are processed
func (a *Aggregator) Finalize() *Repository {
	for _, dir := range a.repo.DirStats {
		dir.recalculateShares()
	}
	return a.repo
}

func (d *DirStats) recalculateShares() {
	if d.TotalChanges == 0 {
		return
	}
	for _, author := range d.Authors {
		author.Share = float64(author.Changes) / float64(d.TotalChanges) * 100
	}
}

// getTopDir returns the first path component, or "." for root-level files.
// Log paths always use forward slashes.
func getTopDir(p string) string {
	p = path.Clean(p)
	if i := strings.IndexByte(p, '/'); i > 0 {
		return p[:i]
	}
	return "."
}

// GetLeaderboard returns authors sorted by the given criteria
func (r *Repository) GetLeaderboard(sortBy string, ascending bool) []*AuthorStats {
	authors := make([]*AuthorStats, 0, len(r.Authors))
	for _, a := range r.Authors {
		authors = append(authors, a)
	}

	sort.SliceStable(authors, func(i, j int) bool {
		ai, aj := authors[i], authors[j]
		var less, equal bool
		switch sortBy {
		case "name":
			less, equal = ai.Name < aj.Name, ai.Name == aj.Name
		case "additions":
			less, equal = ai.Additions < aj.Additions, ai.Additions == aj.Additions
		case "deletions":
			less, equal = ai.Deletions < aj.Deletions, ai.Deletions == aj.Deletions
		case "net":
			less, equal = ai.Net() < aj.Net(), ai.Net() == aj.Net()
		case "files":
			less, equal = len(ai.FilesTouched) < len(aj.FilesTouched), len(ai.FilesTouched) == len(aj.FilesTouched)
		default:
			less, equal = ai.Commits < aj.Commits, ai.Commits == aj.Commits
		}
		if equal {
			return ai.Name < aj.Name
		}
		if ascending {
			return less
		}
		return !less
	})

	return authors
}

// GetTopFiles returns files sorted by the given criteria
func (r *Repository) GetTopFiles(sortBy string, ascending bool, limit int) []*FileStats {
	files := make([]*FileStats, 0, len(r.FileStats))
	for _, f := range r.FileStats {
		files = append(files, f)
	}

	sort.SliceStable(files, func(i, j int) bool {
		fi, fj := files[i], files[j]
		var less, equal bool
		switch sortBy {
		case "path":
			less, equal = fi.Path < fj.Path, fi.Path == fj.Path
		case "touches":
			less, equal = fi.TouchCount < fj.TouchCount, fi.TouchCount == fj.TouchCount
		case "authors":
			less, equal = len(fi.Authors) < len(fj.Authors), len(fi.Authors) == len(fj.Authors)
		case "additions":
			less, equal = fi.Additions < fj.Additions, fi.Additions == fj.Additions
		case "deletions":
			less, equal = fi.Deletions < fj.Deletions, fi.Deletions == fj.Deletions
		default:
			less, equal = fi.TotalChanges < fj.TotalChanges, fi.TotalChanges == fj.TotalChanges
		}
		if equal {
			return fi.Path < fj.Path
		}
		if ascending {
			return less
		}
		return !less
	})

	if limit > 0 && limit < len(files) {
		return files[:limit]
	}
	return files
}

// GetHotspots returns files touched by at least minAuthors authors, ranked
// by a blend of churn, touch frequency and author diversity
func (r *Repository) GetHotspots(limit, minAuthors int) []*HotspotFile {
	hotspots := make([]*HotspotFile, 0)

	maxChanges, maxTouches := 1, 1
	for _, f := range r.FileStats {
		maxChanges = max(maxChanges, f.TotalChanges)
		maxTouches = max(maxTouches, f.TouchCount)
	}
	totalAuthors := max(r.TotalAuthors, 1)

	for _, f := range r.FileStats {
		authorCount := len(f.Authors)
		if authorCount < minAuthors {
			continue
		}

		churnScore := float64(f.TotalChanges) / float64(maxChanges)
		touchScore := float64(f.TouchCount) / float64(maxTouches)
		authorScore := float64(authorCount) / float64(totalAuthors)

		hotspots = append(hotspots, &HotspotFile{
			Path:        f.Path,
			ChurnScore:  churnScore * 100,
			AuthorCount: authorCount,
			RiskScore:   (churnScore*0.4 + touchScore*0.3 + authorScore*0.3) * 100,
			Changes:     f.TotalChanges,
			TouchCount:  f.TouchCount,
		})
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		if hotspots[i].RiskScore == hotspots[j].RiskScore {
			return hotspots[i].Path < hotspots[j].Path
		}
		return hotspots[i].RiskScore > hotspots[j].RiskScore
	})

	if limit > 0 && limit < len(hotspots) {
		return hotspots[:limit]
	}
	return hotspots
}

// GetTimeline returns daily commit data with a rolling average
func (r *Repository) GetTimeline(windowDays int) *TimelineData {
	if len(r.DailyActivity) == 0 {
		return &TimelineData{Period: "day"}
	}
	if windowDays < 1 {
		windowDays = 1
	}

	dates := make([]string, 0, len(r.DailyActivity))
	for d := range r.DailyActivity {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	startDate, _ := time.Parse(dayLayout, dates[0])
	endDate, _ := time.Parse(dayLayout, dates[len(dates)-1])

	var labels []string
	var values []int
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		labels = append(labels, key)
		values = append(values, r.DailyActivity[key])
	}

	rollingAvg := make([]float64, len(values))
	sum := 0
	for i, v := range values {
		sum += v
		if i >= windowDays {
			sum -= values[i-windowDays]
		}
		rollingAvg[i] = float64(sum) / float64(min(i+1, windowDays))
	}

	return &TimelineData{
		Period:     "day",
		Labels:     labels,
		Values:     values,
		RollingAvg: rollingAvg,
	}
}

// GetHeatmap returns hourly commit distribution data
func (r *Repository) GetHeatmap(tz *time.Location) *HeatmapData {
	var maxValue int
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			maxValue = max(maxValue, r.HourlyMatrix[day][hour])
		}
	}

	return &HeatmapData{
		Matrix:   r.HourlyMatrix,
		MaxValue: maxValue,
		Timezone: tz,
	}
}

// GetOwnership returns directories sorted by the given criteria
func (r *Repository) GetOwnership(sortBy string, ascending bool) []*DirStats {
	dirs := make([]*DirStats, 0, len(r.DirStats))
	for _, d := range r.DirStats {
		dirs = append(dirs, d)
	}

	sort.SliceStable(dirs, func(i, j int) bool {
		di, dj := dirs[i], dirs[j]
		var less, equal bool
		switch sortBy {
		case "path":
			less, equal = di.Path < dj.Path, di.Path == dj.Path
		case "touches":
			less, equal = di.TouchCount < dj.TouchCount, di.TouchCount == dj.TouchCount
		case "authors":
			less, equal = len(di.Authors) < len(dj.Authors), len(di.Authors) == len(dj.Authors)
		default:
			less, equal = di.TotalChanges < dj.TotalChanges, di.TotalChanges == dj.TotalChanges
		}
		if equal {
			return di.Path < dj.Path
		}
		if ascending {
			return less
		}
		return !less
	})

	return dirs
}

// TopOwner returns the author with the largest share of a directory
func (d *DirStats) TopOwner() *DirAuthorStats {
	var top *DirAuthorStats
	for _, a := range d.Authors {
		if top == nil || a.Changes > top.Changes || (a.Changes == top.Changes && a.Name < top.Name) {
			top = a
		}
	}
	return top
}

// GetSummary returns overall change statistics
func (r *Repository) GetSummary() *Summary {
	s := &Summary{
		Commits:        r.TotalCommits,
		Authors:        r.TotalAuthors,
		TotalAdditions: r.TotalAdditions,
		TotalDeletions: r.TotalDeletions,
		TotalChanges:   r.TotalAdditions + r.TotalDeletions,
		FilesTouched:   len(r.FileStats),
		BinaryChanges:  r.BinaryChanges,
		Renames:        r.Renames,
		CodebaseSize:   r.CodebaseSize,
	}

	for _, a := range r.Authors {
		if s.FirstCommit.IsZero() || a.FirstCommit.Before(s.FirstCommit) {
			s.FirstCommit = a.FirstCommit
		}
		if a.LastCommit.After(s.LastCommit) {
			s.LastCommit = a.LastCommit
		}
	}

	if r.CodebaseSize > 0 {
		s.RefactoredPercent = float64(s.TotalChanges) / float64(r.CodebaseSize) * 100
	}
	return s
}

// ApplyAuthorAliases folds alias authors into their canonical name.
// aliases maps alias name -> canonical name; alias keys match
// case-insensitively since viper lowercases map keys.
func (r *Repository) ApplyAuthorAliases(aliases map[string]string) {
	lookup := make(map[string]string, len(aliases))
	for alias, canonical := range aliases {
		lookup[strings.ToLower(alias)] = canonical
	}

	var names []string
	for name := range r.Authors {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, alias := range names {
		canonical, ok := lookup[strings.ToLower(alias)]
		if !ok || alias == canonical {
			continue
		}
		from := r.Authors[alias]

		to, ok := r.Authors[canonical]
		if !ok {
			// canonical name never committed, rename in place
			from.Name = canonical
			r.Authors[canonical] = from
		} else {
			to.merge(from)
			r.TotalAuthors--
		}
		delete(r.Authors, alias)

		for _, f := range r.FileStats {
			if count, ok := f.Authors[alias]; ok {
				f.Authors[canonical] += count
				delete(f.Authors, alias)
			}
		}

		for _, d := range r.DirStats {
			da, ok := d.Authors[alias]
			if !ok {
				continue
			}
			if target, ok := d.Authors[canonical]; ok {
				target.Touches += da.Touches
				target.Changes += da.Changes
			} else {
				da.Name = canonical
				d.Authors[canonical] = da
			}
			delete(d.Authors, alias)
			d.recalculateShares()
		}
	}
}
