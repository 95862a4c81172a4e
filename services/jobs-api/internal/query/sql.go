package query

import (
	"fmt"
	"strings"
)

// SQL renders f as a WHERE clause (without the keyword, empty when unfiltered), its
// positional arguments and an ORDER BY clause over the job_postings columns.
func (f Filter) SQL() (where string, args []interface{}, orderBy string) {
	var conds []string
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.JobType != "" {
		conds = append(conds, "job_type = "+arg(f.JobType))
	}
	if f.Location != "" {
		conds = append(conds, "location ILIKE "+arg(likePattern(f.Location))+` ESCAPE '\'`)
	}
	if f.Keyword != "" {
		p := arg(likePattern(f.Keyword))
		conds = append(conds, fmt.Sprintf(
			`(title ILIKE %[1]s ESCAPE '\' OR company ILIKE %[1]s ESCAPE '\' OR array_to_string(tags, ',') ILIKE %[1]s ESCAPE '\')`,
			p,
		))
	}

	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	switch ParseSort(string(f.Sort)) {
	case SortPostingDateAsc:
		orderBy = "ORDER BY posting_date ASC, id ASC"
	case SortTitleAsc:
		orderBy = `ORDER BY title COLLATE "C" ASC, id ASC`
	case SortTitleDesc:
		orderBy = `ORDER BY title COLLATE "C" DESC, id ASC`
	default:
		orderBy = "ORDER BY posting_date DESC, id ASC"
	}
	return where, args, orderBy
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
