package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The same three services rendered by `docker-compose ps` at different terminal widths.
const (
	width24 = `Name   Comm   Stat   Por
       and     e     ts
------------------------
deve   ngin   Fail   80/
lopm   x -g   ed     tcp
ent-   daem
cont   on
aine   off;
rs_p
latf
ormp
roxy
_1
deve   dock   Up     156
lopm   er-e          71/
ent-   ntry          tcp
cont   poin          , 0
aine   t.sh          .0.
rs_r   rabb          0.0
abbi   i             :15
tmq_   ...           672
1                    ->1
                     567
                     2/t
                     cp,
                     256
                     72/
                     tcp
                     , 4
                     369
                     /tc
                     p,
                     567
                     1/t
                     cp,
                     0.0
                     .0.
                     0:5
                     672
                     ->5
                     672
                     /tc
                     p
deve   /ent   Up     0.0
lopm   rypo          .0.
ent-   int.          0:8
cont   sh -          0->
aine   -api          80/
rs_t   --do          tcp
raef   c             , 0
ik_1   ...           .0.
                     0.0
                     :80
                     80-
                     >80
                     80/
                     tcp`

	width38 = `  Name     Command    State    Ports
--------------------------------------
developm   nginx -g   Faile   80/tcp
ent-cont   daemon     d
ainers_p   off;
latformp
roxy_1
developm   docker-e   Up      15671/tc
ent-cont   ntrypoin           p, 0.0.0
ainers_r   t.sh               .0:15672
abbitmq_   rabbi              ->15672/
1          ...                tcp, 256
                              72/tcp,
                              4369/tcp
                              , 5671/t
                              cp, 0.0.
                              0.0:5672
                              ->5672/t
                              cp
developm   /entrypo   Up      0.0.0.0:
ent-cont   int.sh             80->80/t
ainers_t   --api              cp, 0.0.
raefik_1   --doc              0.0:8080
           ...                ->8080/t
                              cp`

	width80 = `         Name                   Command         State           Ports
--------------------------------------------------------------------------------
development-containers   nginx -g daemon off;   Failed   80/tcp
_platformproxy_1
development-             docker-entrypoint.sh   Up       15671/tcp, 0.0.0.0:156
containers_rabbitmq_1    rabbi ...                       72->15672/tcp,
                                                         25672/tcp, 4369/tcp,
                                                         5671/tcp,
                                                         0.0.0.0:5672->5672/tcp
development-             /entrypoint.sh --api   Up       0.0.0.0:80->80/tcp,
containers_traefik_1     --doc ...                       0.0.0.0:8080->8080/tcp`

	width114 = `               Name                             Command               State                  Ports
-----------------------------------------------------------------------------------------------------------------
development-                         nginx -g daemon off;             Failed   80/tcp
containers_platformproxy_1
development-containers_rabbitmq_1    docker-entrypoint.sh rabbi ...   Up       15671/tcp,
                                                                               0.0.0.0:15672->15672/tcp,
                                                                               25672/tcp, 4369/tcp, 5671/tcp,
                                                                               0.0.0.0:5672->5672/tcp
development-containers_traefik_1     /entrypoint.sh --api --doc ...   Up       0.0.0.0:80->80/tcp,
                                                                               0.0.0.0:8080->8080/tcp`

	widthUnbounded = `                 Name                               Command               State                                             Ports
-----------------------------------------------------------------------------------------------------------------------------------------------------------------------------
development-containers_platformproxy_1   nginx -g daemon off;             Failed   80/tcp
development-containers_rabbitmq_1        docker-entrypoint.sh rabbi ...   Up       15671/tcp, 0.0.0.0:15672->15672/tcp, 25672/tcp, 4369/tcp, 5671/tcp, 0.0.0.0:5672->5672/tcp
development-containers_traefik_1         /entrypoint.sh --api --doc ...   Up       0.0.0.0:80->80/tcp, 0.0.0.0:8080->8080/tcp`
)

var expectedServices = []Service{
	{
		Name:    "development-containers_platformproxy_1",
		Command: "nginx -g daemon off;",
		State:   "Failed",
		Ports:   "80/tcp",
	},
	{
		Name:    "development-containers_rabbitmq_1",
		Command: "docker-entrypoint.sh rabbi ...",
		State:   "Up",
		Ports:   "15671/tcp, 0.0.0.0:15672->15672/tcp, 25672/tcp, 4369/tcp, 5671/tcp, 0.0.0.0:5672->5672/tcp",
	},
	{
		Name:    "development-containers_traefik_1",
		Command: "/entrypoint.sh --api --doc ...",
		State:   "Up",
		Ports:   "0.0.0.0:80->80/tcp, 0.0.0.0:8080->8080/tcp",
	},
}

func withoutSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func TestParsePS_WidthInvariant(t *testing.T) {
	tables := map[string]string{
		"24":        width24,
		"38":        width38,
		"80":        width80,
		"114":       width114,
		"unbounded": widthUnbounded,
	}

	for width, table := range tables {
		t.Run(width, func(t *testing.T) {
			services := ParsePS(strings.Split(table, "\n"))
			require.Len(t, services, len(expectedServices))

			for i, want := range expectedServices {
				got := services[i]
				assert.Equal(t, withoutSpaces(want.Name), withoutSpaces(got.Name), "name of service %d", i)
				assert.Equal(t, withoutSpaces(want.Command), withoutSpaces(got.Command), "command of service %d", i)
				assert.Equal(t, withoutSpaces(want.State), withoutSpaces(got.State), "state of service %d", i)
				assert.Equal(t, withoutSpaces(want.Ports), withoutSpaces(got.Ports), "ports of service %d", i)
			}
		})
	}
}

func TestParsePS_UnboundedKeepsCellText(t *testing.T) {
	services := ParsePS(strings.Split(widthUnbounded, "\n"))
	require.Len(t, services, 3)

	assert.Equal(t, expectedServices, services)
}

func TestParsePS_Empty(t *testing.T) {
	assert.Empty(t, ParsePS(nil))
	assert.Empty(t, ParsePS([]string{"Name   Command   State   Ports", "------------------------------"}))
}

func TestParsePS_NoSeparatorIsAllHeader(t *testing.T) {
	lines := []string{
		"web_1   nginx   Up   80/tcp",
	}
	assert.Empty(t, ParsePS(lines))
}

func TestParsePS_WithoutPortsColumn(t *testing.T) {
	lines := []string{
		"Name    Command   State",
		"----------------------",
		"app_1   run.sh    Exit 0",
		"db_1    pg        Up",
	}

	services := ParsePS(lines)
	require.Len(t, services, 2)
	assert.Equal(t, Service{Name: "app_1", Command: "run.sh", State: "Exit 0"}, services[0])
	assert.Equal(t, Service{Name: "db_1", Command: "pg", State: "Up"}, services[1])
}

func TestDetectColumns_NarrowGapsStayInColumn(t *testing.T) {
	lines := []string{
		"ab  cd   ef",
		"ab  cd   ef",
	}

	columns := detectColumns(lines)
	require.Len(t, columns, 2)
	assert.Equal(t, column{start: 0, length: 6}, columns[0])
	assert.Equal(t, column{start: 9, length: 2}, columns[1])
}

func TestService_StateHelpers(t *testing.T) {
	assert.True(t, Service{State: "Up"}.Running())
	assert.True(t, Service{State: "Up (healthy)"}.Running())
	assert.False(t, Service{State: "Exit 0"}.Running())
	assert.True(t, Service{State: "Exit 0"}.ExitedCleanly())
	assert.False(t, Service{State: "Exit 1"}.ExitedCleanly())
}
