package assign

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/teambalance/internal/domain/model"
)

var teamNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:teambalance:team"))

// fingerprint identifies a roster independent of input order.
func fingerprint(players []model.Player) string {
	ids := make([]string, len(players))
	for i := range players {
		ids[i] = players[i].ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "\x00")
}

// TeamID derives a stable team id from the roster fingerprint and the team's
// position, so the same roster always yields the same ids.
func TeamID(fingerprint string, index int) string {
	return uuid.NewSHA1(teamNamespace, []byte(fingerprint+"#"+strconv.Itoa(index))).String()
}
