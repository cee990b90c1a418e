/*
Package status owns file storage and outcome tracking for a patch run.

	            +-------------+
	            |   Manager   |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+----+
	|   Files   |           | Tracked |
	| (on disk) |           | outcome |
	+-----------+           +---------+

🎯 Purpose:
- Reads site files whole, relative to a root
- Replaces files in full through temp file and rename
- Keeps optional .bak copies
- Records a FileInfo per file for reporting

⚡ Rules:
- Paths may not escape the root
- A missing file is ErrFileNotFound
- Writes keep the permissions of the file they replace
*/
package status
