package admin

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// HandleExportLeaderboard 导出排行榜为xlsx
func HandleExportLeaderboard(c *gin.Context, db *sql.DB) {
	rows, err := db.Query(`
		SELECT username, points, COALESCE(TO_CHAR(last_submission, 'YYYY-MM-DD HH24:MI:SS'), ''),
		       (SELECT COUNT(*) FROM submissions s WHERE s.team_id = u.id)
		FROM users u
		WHERE role = 'user'
		ORDER BY points DESC, last_submission ASC, username ASC`)
	if err != nil {
		log.Printf("export leaderboard error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "DB_ERROR"})
		return
	}
	defer rows.Close()

	f := excelize.NewFile()
	sheetName := "Leaderboard"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头
	headers := []string{"Rank", "Team Name", "Points", "Flags Solved", "Last Submission"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"BB86FC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheetName, "A1", "E1", headerStyle)

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 22)

	rank := 0
	for rows.Next() {
		var username, lastSubmission string
		var points, solved int
		if err := rows.Scan(&username, &points, &lastSubmission, &solved); err != nil {
			continue
		}
		rank++
		values := []interface{}{rank, username, points, solved, lastSubmission}
		for j, val := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rank+1)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	filename := "leaderboard_" + time.Now().Format("20060102_150405") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		log.Printf("write xlsx error: %v", err)
	}
}
