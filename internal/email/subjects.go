package email

const (
	subjectNewLeadFmt         = "طلب نقل جديد %s"
	subjectUndeliveredLeadFmt = "تعذّر حفظ الطلب %s"
)
