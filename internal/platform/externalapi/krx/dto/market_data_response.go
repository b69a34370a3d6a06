package dto

// DailyQuotesResponse はKRX個別銘柄の日次相場APIのレスポンスです。
// 数値フィールドはカンマ区切りの文字列で返されます(例: "70,000")。
type DailyQuotesResponse struct {
	Output []DailyQuoteRow `json:"output"`
}

// DailyQuoteRow は1営業日分の相場行です。
type DailyQuoteRow struct {
	Date      string `json:"TRD_DD"`        // 取引日（例: "2024/11/25"）
	Open      string `json:"TDD_OPNPRC"`    // 始値
	High      string `json:"TDD_HGPRC"`     // 高値
	Low       string `json:"TDD_LWPRC"`     // 安値
	Close     string `json:"TDD_CLSPRC"`    // 終値
	Volume    string `json:"ACC_TRDVOL"`    // 出来高
	Amount    string `json:"ACC_TRDVAL"`    // 取引代金
	Change    string `json:"CMPPREVDD_PRC"` // 前日比
	FlucRate  string `json:"FLUC_RT"`       // 等落率
	MarketCap string `json:"MKTCAP"`        // 時価総額
}

// InstrumentListResponse はKRX上場銘柄一覧APIのレスポンスです。
type InstrumentListResponse struct {
	Rows []InstrumentRow `json:"OutBlock_1"`
}

// InstrumentRow は上場銘柄1件のマスター行です。
type InstrumentRow struct {
	Code     string `json:"ISU_SRT_CD"` // 短縮コード（例: "005930"）
	Name     string `json:"ISU_ABBRV"`  // 銘柄名
	Market   string `json:"MKT_TP_NM"`  // 市場区分（KOSPI/KOSDAQ）
	Sector   string `json:"SECT_TP_NM"` // 所属部
	ListedAt string `json:"LIST_DD"`    // 上場日（例: "2010/01/01"）
}
