package sessions

import "strings"

// RoleDescription is the fixed assistant persona placed at the top of every
// system instruction.
const RoleDescription = `คุณคือผู้ช่วย AI ของแดชบอร์ดบริหารจัดการโลจิสติกส์และซัพพลายเชน
หน้าที่ของคุณคือช่วยผู้ใช้เรื่องการเช่ารถ การจองรถ สถานะยานพาหนะ และการวางแผนขนส่ง
ตอบเป็นภาษาไทยอย่างสุภาพ กระชับ และอ้างอิงข้อมูลเรียลไทม์ด้านล่างเมื่อเกี่ยวข้อง
หากข้อมูลไม่เพียงพอ ให้แจ้งผู้ใช้ตรงๆ และห้ามสร้างข้อมูลขึ้นเอง`

const (
	callerContextHeading = "ข้อมูลเพิ่มเติมจากหน้าจอผู้ใช้:"
	realtimeHeading      = "ข้อมูลเรียลไทม์จากระบบ:"
	noRealtimeData       = "ไม่มีข้อมูลเรียลไทม์ในขณะนี้"
)

// BuildSystemInstruction composes the role description, the caller supplied
// context (verbatim, when present) and the real-time context block.
func BuildSystemInstruction(callerContext, realtime string) string {
	var b strings.Builder
	b.WriteString(RoleDescription)
	if strings.TrimSpace(callerContext) != "" {
		b.WriteString("\n\n")
		b.WriteString(callerContextHeading)
		b.WriteString("\n")
		b.WriteString(callerContext)
	}
	b.WriteString("\n\n")
	b.WriteString(realtimeHeading)
	b.WriteString("\n")
	if strings.TrimSpace(realtime) == "" {
		b.WriteString(noRealtimeData)
	} else {
		b.WriteString(realtime)
	}
	return b.String()
}
