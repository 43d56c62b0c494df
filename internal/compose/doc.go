// Package compose understands the two docker-compose artefacts lighter reads:
// the compose file of an environment path and the human formatted table
// printed by `docker-compose ps`.
//
// # ps listing
//
// docker-compose renders `ps` as a pseudo-table sized to the terminal. Cells
// that do not fit their column wrap onto the following lines, so a single
// service may span many physical lines:
//
//	  Name     Command    State    Ports
//	--------------------------------------
//	developm   nginx -g   Faile   80/tcp
//	ent-cont   daemon     d
//	ainers_p   off;
//
// ParsePS recovers the column extents from the blank byte positions shared by
// every line and rebuilds one Service per logical row, independent of the
// width the table was rendered at.
package compose
